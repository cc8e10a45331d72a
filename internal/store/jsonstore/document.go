package jsonstore

import (
	"github.com/samber/lo"

	"github.com/vms003/vatsal-medical/internal/models"
)

// Document is the whole persisted state. Every mutation rewrites all of it.
type Document struct {
	Users         []models.User         `json:"users"`
	Medicines     []models.Medicine     `json:"medicines"`
	Doctors       []models.Doctor       `json:"doctors"`
	Prescriptions []models.Prescription `json:"prescriptions"`
}

// NewDocument returns the empty default document.
func NewDocument() *Document {
	return &Document{
		Users:         []models.User{},
		Medicines:     []models.Medicine{},
		Doctors:       []models.Doctor{},
		Prescriptions: []models.Prescription{},
	}
}

// rawDocument distinguishes a missing collection from an empty one.
type rawDocument struct {
	Users         *[]models.User         `json:"users"`
	Medicines     *[]models.Medicine     `json:"medicines"`
	Doctors       *[]models.Doctor       `json:"doctors"`
	Prescriptions *[]models.Prescription `json:"prescriptions"`
}

// document fills missing collections with empty defaults and reports
// whether anything had to be filled.
func (r rawDocument) document() (*Document, bool) {
	doc := NewDocument()
	complete := true
	if r.Users != nil {
		doc.Users = *r.Users
	} else {
		complete = false
	}
	if r.Medicines != nil {
		doc.Medicines = *r.Medicines
	} else {
		complete = false
	}
	if r.Doctors != nil {
		doc.Doctors = *r.Doctors
	} else {
		complete = false
	}
	if r.Prescriptions != nil {
		doc.Prescriptions = *r.Prescriptions
	} else {
		complete = false
	}
	return doc, complete
}

// nextID is max(existing id)+1, or 1 for an empty collection.
func nextID[T any](items []T, id func(T) int64) int64 {
	return lo.Max(lo.Map(items, func(item T, _ int) int64 { return id(item) })) + 1
}
