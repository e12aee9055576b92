// RecordFilter narrows the indexed log records returned by the API.
package dto

type RecordFilter struct {
	Status string
	Label  string
	RunID  string
	Limit  int
	Offset int
}
