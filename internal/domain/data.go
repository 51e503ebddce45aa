/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TemplateData is the record that bound elements are resolved against. Its
// shape is fixed; the designer only edits field values.
type TemplateData struct {
	BusinessDetails BusinessDetails `json:"businessDetails"`
	WaybillDetails  WaybillDetails  `json:"waybillDetails"`
	SenderDetails   PartyDetails    `json:"senderDetails"`
	ReceiverDetails PartyDetails    `json:"receiverDetails"`
	OrderDetails    OrderDetails    `json:"orderDetails"`
	ProductDetails  ProductDetails  `json:"productDetails"`
}

type BusinessDetails struct {
	Logo                 string `json:"logo"`
	BusinessLocationName string `json:"businessLocationName"`
	LocationAddressCity  string `json:"locationAddressCity"`
	ContactNumber        string `json:"contactNumber"`
}

type WaybillDetails struct {
	WaybillNumber  string `json:"waybillNumber"`
	WaybillBarcode string `json:"waybillBarcode"`
}

// PartyDetails is used for both sender and receiver.
type PartyDetails struct {
	CustomerName  string `json:"customerName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ContactNumber string `json:"contactNumber"`
}

type OrderDetails struct {
	OrderNumber    string `json:"orderNumber"`
	Barcode        string `json:"barcode"`
	OrderDate      string `json:"orderDate"`
	TotalCODAmount string `json:"totalCODAmount"`
}

type ProductDetails struct {
	SKU                  string `json:"sku"`
	ProductName          string `json:"productName"`
	Quantity             int    `json:"quantity"`
	TotalItemsInCount    int    `json:"totalItemsInCount"`
	TotalQuantityInCount int    `json:"totalQuantityInCount"`
}

// Record returns the data as nested maps keyed by the JSON field names.
// Numbers stay numeric so the resolver can stringify them itself.
func (d TemplateData) Record() map[string]any {
	return map[string]any{
		"businessDetails": map[string]any{
			"logo":                 d.BusinessDetails.Logo,
			"businessLocationName": d.BusinessDetails.BusinessLocationName,
			"locationAddressCity":  d.BusinessDetails.LocationAddressCity,
			"contactNumber":        d.BusinessDetails.ContactNumber,
		},
		"waybillDetails": map[string]any{
			"waybillNumber":  d.WaybillDetails.WaybillNumber,
			"waybillBarcode": d.WaybillDetails.WaybillBarcode,
		},
		"senderDetails":   d.SenderDetails.record(),
		"receiverDetails": d.ReceiverDetails.record(),
		"orderDetails": map[string]any{
			"orderNumber":    d.OrderDetails.OrderNumber,
			"barcode":        d.OrderDetails.Barcode,
			"orderDate":      d.OrderDetails.OrderDate,
			"totalCODAmount": d.OrderDetails.TotalCODAmount,
		},
		"productDetails": map[string]any{
			"sku":                  d.ProductDetails.SKU,
			"productName":          d.ProductDetails.ProductName,
			"quantity":             d.ProductDetails.Quantity,
			"totalItemsInCount":    d.ProductDetails.TotalItemsInCount,
			"totalQuantityInCount": d.ProductDetails.TotalQuantityInCount,
		},
	}
}

func (p PartyDetails) record() map[string]any {
	return map[string]any{
		"customerName":  p.CustomerName,
		"address":       p.Address,
		"city":          p.City,
		"contactNumber": p.ContactNumber,
	}
}

func (p *PartyDetails) set(field, value string) bool {
	switch field {
	case "customerName":
		p.CustomerName = value
	case "address":
		p.Address = value
	case "city":
		p.City = value
	case "contactNumber":
		p.ContactNumber = value
	default:
		return false
	}
	return true
}

// Set assigns one field by its section and field name. Integer fields of
// productDetails must parse as integers.
func (d *TemplateData) Set(section, field, value string) error {
	ok := true
	switch section {
	case "businessDetails":
		switch field {
		case "logo":
			d.BusinessDetails.Logo = value
		case "businessLocationName":
			d.BusinessDetails.BusinessLocationName = value
		case "locationAddressCity":
			d.BusinessDetails.LocationAddressCity = value
		case "contactNumber":
			d.BusinessDetails.ContactNumber = value
		default:
			ok = false
		}
	case "waybillDetails":
		switch field {
		case "waybillNumber":
			d.WaybillDetails.WaybillNumber = value
		case "waybillBarcode":
			d.WaybillDetails.WaybillBarcode = value
		default:
			ok = false
		}
	case "senderDetails":
		ok = d.SenderDetails.set(field, value)
	case "receiverDetails":
		ok = d.ReceiverDetails.set(field, value)
	case "orderDetails":
		switch field {
		case "orderNumber":
			d.OrderDetails.OrderNumber = value
		case "barcode":
			d.OrderDetails.Barcode = value
		case "orderDate":
			d.OrderDetails.OrderDate = value
		case "totalCODAmount":
			d.OrderDetails.TotalCODAmount = value
		default:
			ok = false
		}
	case "productDetails":
		var dst *int
		switch field {
		case "sku":
			d.ProductDetails.SKU = value
			return nil
		case "productName":
			d.ProductDetails.ProductName = value
			return nil
		case "quantity":
			dst = &d.ProductDetails.Quantity
		case "totalItemsInCount":
			dst = &d.ProductDetails.TotalItemsInCount
		case "totalQuantityInCount":
			dst = &d.ProductDetails.TotalQuantityInCount
		default:
			ok = false
		}
		if dst != nil {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("%s.%s: %w", section, field, err)
			}
			*dst = n
		}
	default:
		ok = false
	}
	if !ok {
		return fmt.Errorf("unknown data field %s.%s", section, field)
	}
	return nil
}

// SampleData returns the demonstration record shown in a fresh designer.
func SampleData() TemplateData {
	return TemplateData{
		BusinessDetails: BusinessDetails{
			Logo:                 "/storemate-logo.png",
			BusinessLocationName: "StoreMate Main Branch",
			LocationAddressCity:  "123 Business Street, New York, NY 10001",
			ContactNumber:        "+1 (555) 123-4567",
		},
		WaybillDetails: WaybillDetails{WaybillNumber: "WB2024001234", WaybillBarcode: "1234567890123"},
		SenderDetails: PartyDetails{
			CustomerName:  "John Doe",
			Address:       "456 Sender Avenue",
			City:          "New York",
			ContactNumber: "+1 (555) 987-6543",
		},
		ReceiverDetails: PartyDetails{
			CustomerName:  "Jane Smith",
			Address:       "789 Receiver Boulevard",
			City:          "Los Angeles",
			ContactNumber: "+1 (555) 456-7890",
		},
		OrderDetails: OrderDetails{
			OrderNumber:    "ORD2024001",
			Barcode:        "9876543210987",
			OrderDate:      "2024-01-15",
			TotalCODAmount: "299.99",
		},
		ProductDetails: ProductDetails{
			SKU:                  "SKU-001-XYZ",
			ProductName:          "Premium Wireless Headphones",
			Quantity:             2,
			TotalItemsInCount:    5,
			TotalQuantityInCount: 10,
		},
	}
}
