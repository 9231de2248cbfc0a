package mock

// PartnerFields is a trimmed res.partner schema covering each field kind
// the formatter distinguishes.
func PartnerFields() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"name":          {"type": "char", "string": "Name", "required": true},
		"display_name":  {"type": "char", "string": "Display Name", "readonly": true, "store": false},
		"email":         {"type": "char", "string": "Email"},
		"phone":         {"type": "char", "string": "Phone"},
		"is_company":    {"type": "boolean", "string": "Is a Company"},
		"active":        {"type": "boolean", "string": "Active"},
		"customer_rank": {"type": "integer", "string": "Customer Rank"},
		"credit_limit":  {"type": "float", "string": "Credit Limit", "digits": []interface{}{16, 2}},
		"type": {
			"type":   "selection",
			"string": "Address Type",
			"selection": []interface{}{
				[]interface{}{"contact", "Contact"},
				[]interface{}{"invoice", "Invoice Address"},
			},
		},
		"country_id":     {"type": "many2one", "string": "Country", "relation": "res.country"},
		"child_ids":      {"type": "one2many", "string": "Contact", "relation": "res.partner"},
		"category_id":    {"type": "many2many", "string": "Tags", "relation": "res.partner.category"},
		"comment":        {"type": "html", "string": "Notes"},
		"image_1920":     {"type": "binary", "string": "Image"},
		"write_date":     {"type": "datetime", "string": "Last Updated on", "readonly": true},
		"message_ids":    {"type": "one2many", "string": "Messages", "relation": "mail.message"},
		"street":         {"type": "char", "string": "Street"},
		"city":           {"type": "char", "string": "City"},
		"ref":            {"type": "char", "string": "Reference"},
		"vat":            {"type": "char", "string": "Tax ID"},
		"website":        {"type": "char", "string": "Website Link"},
		"function":       {"type": "char", "string": "Job Position"},
		"mobile":         {"type": "char", "string": "Mobile"},
		"zip":            {"type": "char", "string": "Zip"},
		"lang":           {"type": "char", "string": "Language"},
		"tz":             {"type": "char", "string": "Timezone"},
		"date":           {"type": "date", "string": "Date"},
		"total_invoiced": {"type": "monetary", "string": "Total Invoiced", "store": false, "currency_field": "currency_id"},
		"currency_id":    {"type": "many2one", "string": "Currency", "relation": "res.currency"},
	}
}
