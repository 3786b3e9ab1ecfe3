package forms

// Input schemas for every form-accepting route.

var RegisterSchema = Schema{
	Name: "register",
	Fields: []Field{
		{Name: "username", Label: "Username", Rules: []Rule{{Kind: Required}, {Kind: MinLen, N: 3}, {Kind: MaxLen, N: 30}}},
		{Name: "email", Label: "Email", Rules: []Rule{{Kind: Required}, {Kind: Email}, {Kind: MaxLen, N: 254}}},
		{Name: "password", Label: "Password", Rules: []Rule{{Kind: Required}, {Kind: MinLen, N: 6}, {Kind: MaxLen, N: 128}}},
	},
}

var LoginSchema = Schema{
	Name: "login",
	Fields: []Field{
		{Name: "email", Label: "Email", Rules: []Rule{{Kind: Required}, {Kind: Email}}},
		{Name: "password", Label: "Password", Rules: []Rule{{Kind: Required}}},
	},
}

var CategoryTypeSchema = Schema{
	Name: "category-type",
	Fields: []Field{
		{Name: "name", Label: "Type name", Rules: []Rule{{Kind: Required}, {Kind: MaxLen, N: 100}}},
	},
}

var TransactionSchema = Schema{
	Name: "transaction",
	Fields: []Field{
		{Name: "category_id", Label: "Category", Rules: []Rule{{Kind: Required}}},
		{Name: "date", Label: "Date", Rules: []Rule{{Kind: Required}, {Kind: DateISO}}},
		{Name: "description", Label: "Description", Rules: []Rule{{Kind: Required}, {Kind: MaxLen, N: 200}}},
		{Name: "amount", Label: "Amount", Rules: []Rule{{Kind: Required}, {Kind: Decimal}}},
	},
}

// ReportSchema validates the report query. Dates are optional; the handler
// substitutes open bounds for missing values.
var ReportSchema = Schema{
	Name: "report",
	Fields: []Field{
		{Name: "kind", Label: "Category", Rules: []Rule{{Kind: Required}}},
		{Name: "from", Label: "From date", Rules: []Rule{{Kind: DateISO}}},
		{Name: "to", Label: "To date", Rules: []Rule{{Kind: DateISO}}},
	},
}
