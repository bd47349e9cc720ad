package domain

// Student is a reminder recipient as returned by the datastore.
type Student struct {
	ID    string
	Email string
	Name  string
}
