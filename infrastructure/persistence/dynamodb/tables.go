package dynamodb

// Table and index names are injected at construction rather than read from
// package-level constants, so environments (and tests) can differ.

// ProjectTable names the projects table and its indexes.
type ProjectTable struct {
	Name              string
	CreationDateIndex string
}

// QuotationTable names the quotations table and its indexes.
type QuotationTable struct {
	Name               string
	PendingReviewIndex string
	ClientIndex        string
}

// PartTable names the parts table and its indexes.
type PartTable struct {
	Name           string
	HierarchyIndex string
}

// OrderTable names the orders table and its indexes.
type OrderTable struct {
	Name              string
	CreationDateIndex string
	StatusIndex       string
	OpenOrdersIndex   string
	HierarchyIndex    string
}

// Tables groups the full table set for construction and for the workflow
// coordinator, which writes across tables in one transaction.
type Tables struct {
	Projects   ProjectTable
	Quotations QuotationTable
	Parts      PartTable
	Orders     OrderTable
}
