/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

type sampleSpec struct {
	id, typ, content, binding string
	x, y, w, h                float64
	styles                    Styles
}

var sampleSpecs = []sampleSpec{
	{"logo", "image", "/storemate-logo.png", "businessDetails.logo", 50, 30, 200, 60, Styles{}},
	{"business-name", "text", "{{businessDetails.businessLocationName}}", "businessDetails.businessLocationName", 50, 110, 350, 35,
		Styles{FontSize: "20px", FontWeight: "bold", Color: "#2563eb"}},
	{"business-address", "text", "{{businessDetails.locationAddressCity}}", "businessDetails.locationAddressCity", 50, 150, 350, 45,
		Styles{FontSize: "14px", Color: "#666666", LineHeight: "1.4"}},
	{"business-contact", "text", "Contact: {{businessDetails.contactNumber}}", "businessDetails.contactNumber", 50, 200, 250, 25,
		Styles{FontSize: "12px", Color: "#666666"}},
	{"waybill-title", "text", "WAYBILL", "", 250, 250, 300, 50,
		Styles{FontSize: "32px", FontWeight: "bold", TextAlign: "center", Color: "#1f2937", BackgroundColor: "#f3f4f6", Padding: "10px"}},
	{"waybill-number", "text", "Waybill Number: {{waybillDetails.waybillNumber}}", "waybillDetails.waybillNumber", 50, 320, 300, 30,
		Styles{FontSize: "16px", FontWeight: "bold"}},
	{"waybill-barcode", "text", "Barcode: {{waybillDetails.waybillBarcode}}", "waybillDetails.waybillBarcode", 400, 320, 250, 30,
		Styles{FontSize: "14px", FontFamily: "Courier New"}},
	{"sender-section", "text", "SENDER DETAILS", "", 50, 380, 200, 30,
		Styles{FontSize: "14px", FontWeight: "bold", Color: "#ffffff", BackgroundColor: "#2563eb", Padding: "8px", TextAlign: "center"}},
	{"sender-name", "text", "{{senderDetails.customerName}}", "senderDetails.customerName", 50, 420, 200, 25,
		Styles{FontSize: "14px", FontWeight: "bold"}},
	{"sender-address", "text", "{{senderDetails.address}}, {{senderDetails.city}}", "senderDetails.address", 50, 450, 200, 50,
		Styles{FontSize: "12px", Color: "#666666", LineHeight: "1.3"}},
	{"sender-contact", "text", "Phone: {{senderDetails.contactNumber}}", "senderDetails.contactNumber", 50, 510, 200, 25,
		Styles{FontSize: "12px", Color: "#666666"}},
	{"receiver-section", "text", "RECEIVER DETAILS", "", 400, 380, 200, 30,
		Styles{FontSize: "14px", FontWeight: "bold", Color: "#ffffff", BackgroundColor: "#dc2626", Padding: "8px", TextAlign: "center"}},
	{"receiver-name", "text", "{{receiverDetails.customerName}}", "receiverDetails.customerName", 400, 420, 200, 25,
		Styles{FontSize: "14px", FontWeight: "bold"}},
	{"receiver-address", "text", "{{receiverDetails.address}}, {{receiverDetails.city}}", "receiverDetails.address", 400, 450, 200, 50,
		Styles{FontSize: "12px", Color: "#666666", LineHeight: "1.3"}},
	{"receiver-contact", "text", "Phone: {{receiverDetails.contactNumber}}", "receiverDetails.contactNumber", 400, 510, 200, 25,
		Styles{FontSize: "12px", Color: "#666666"}},
	{"order-details-section", "text", "ORDER INFORMATION", "", 50, 570, 550, 30,
		Styles{FontSize: "14px", FontWeight: "bold", Color: "#1f2937", BackgroundColor: "#f9fafb", Padding: "8px", TextAlign: "center", Border: "1px solid #e5e7eb"}},
	{"order-number", "text", "Order #: {{orderDetails.orderNumber}}", "orderDetails.orderNumber", 50, 610, 180, 25,
		Styles{FontSize: "12px", FontWeight: "bold"}},
	{"order-date", "text", "Date: {{orderDetails.orderDate}}", "orderDetails.orderDate", 240, 610, 150, 25,
		Styles{FontSize: "12px"}},
	{"cod-amount", "text", "COD Amount: ${{orderDetails.totalCODAmount}}", "orderDetails.totalCODAmount", 400, 610, 200, 25,
		Styles{FontSize: "12px", FontWeight: "bold", Color: "#dc2626"}},
	{"product-info", "text", "Product: {{productDetails.productName}} (SKU: {{productDetails.sku}})", "productDetails.productName", 50, 650, 400, 25,
		Styles{FontSize: "12px"}},
	{"quantity-info", "text", "Quantity: {{productDetails.quantity}} | Total Items: {{productDetails.totalItemsInCount}}", "productDetails.quantity", 50, 680, 350, 25,
		Styles{FontSize: "12px", Color: "#666666"}},
}

// SampleElements returns the starter waybill layout. Each call returns fresh copies.
func SampleElements() []Element {
	out := make([]Element, 0, len(sampleSpecs))
	for _, s := range sampleSpecs {
		e := NewElement(s.id, ElementType(s.typ), s.content, s.binding)
		e.Position = Point{X: s.x, Y: s.y}
		e.Size = Size{Width: s.w, Height: s.h}
		e.Styles = s.styles.Clone()
		out = append(out, e)
	}
	return out
}
