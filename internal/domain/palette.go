/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Field is one entry of the sidebar field palette: a data path that can be
// dropped onto the canvas as a bound element.
type Field struct {
	Section string
	Key     string
	Label   string
	Type    ElementType
	// Content is the template text inserted for the element; empty for images.
	Content string
}

// Path returns the dotted data path.
func (f Field) Path() string { return f.Section + "." + f.Key }

// SectionTitle maps section keys to headings.
var SectionTitle = map[string]string{
	"businessDetails": "Business Details",
	"waybillDetails":  "Waybill Details",
	"senderDetails":   "Sender Details",
	"receiverDetails": "Receiver Details",
	"orderDetails":    "Order Details",
	"productDetails":  "Product Details",
}

// Sections lists data sections in display order.
func Sections() []string {
	return []string{"businessDetails", "waybillDetails", "senderDetails", "receiverDetails", "orderDetails", "productDetails"}
}

func textField(section, key, label string) Field {
	return Field{Section: section, Key: key, Label: label, Type: TypeText, Content: "{{" + section + "." + key + "}}"}
}

// Palette returns the static field palette.
func Palette() []Field {
	cod := textField("orderDetails", "totalCODAmount", "Total COD Amount")
	cod.Content = "$" + cod.Content
	return []Field{
		{Section: "businessDetails", Key: "logo", Label: "Logo", Type: TypeImage},
		textField("businessDetails", "businessLocationName", "Business Location Name"),
		textField("businessDetails", "locationAddressCity", "Location Address & City"),
		textField("businessDetails", "contactNumber", "Contact Number"),
		textField("waybillDetails", "waybillNumber", "Waybill Number"),
		textField("waybillDetails", "waybillBarcode", "Waybill Barcode"),
		textField("senderDetails", "customerName", "Customer Name"),
		textField("senderDetails", "address", "Address"),
		textField("senderDetails", "city", "City"),
		textField("senderDetails", "contactNumber", "Contact Number"),
		textField("receiverDetails", "customerName", "Customer Name"),
		textField("receiverDetails", "address", "Address"),
		textField("receiverDetails", "city", "City"),
		textField("receiverDetails", "contactNumber", "Contact Number"),
		textField("orderDetails", "orderNumber", "Order Number"),
		textField("orderDetails", "barcode", "Barcode"),
		textField("orderDetails", "orderDate", "Order Date"),
		cod,
		textField("productDetails", "sku", "SKU"),
		textField("productDetails", "productName", "Product Name"),
		textField("productDetails", "quantity", "Quantity"),
		textField("productDetails", "totalItemsInCount", "Total Items"),
		textField("productDetails", "totalQuantityInCount", "Total Quantity"),
	}
}
