package form

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusInactive = "inactive"
)

const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeDate     = "date"
	FieldTypeFile     = "file"
	FieldTypeNumber   = "number"
	FieldTypeCheckbox = "checkbox"
	FieldTypeRadio    = "radio"
)

var fieldTypes = map[string]bool{
	FieldTypeText:     true,
	FieldTypeTextarea: true,
	FieldTypeSelect:   true,
	FieldTypeDate:     true,
	FieldTypeFile:     true,
	FieldTypeNumber:   true,
	FieldTypeCheckbox: true,
	FieldTypeRadio:    true,
}

// Field describes one input in a form. Validation holds an optional
// expression evaluated against the submitted value; it must yield a
// boolean, with false meaning the value is rejected.
type Field struct {
	ID         string   `bson:"id" json:"id"`
	Label      string   `bson:"label" json:"label"`
	Type       string   `bson:"type" json:"type"`
	Required   bool     `bson:"required" json:"required"`
	Options    []string `bson:"options,omitempty" json:"options,omitempty"`
	Validation string   `bson:"validation,omitempty" json:"validation,omitempty"`
}

// Form is a template users submit against. Category must name an
// active department; WorkflowID names the approval chain every
// submission of this form follows.
type Form struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Fields      []Field            `bson:"fields" json:"fields"`
	WorkflowID  primitive.ObjectID `bson:"workflow_id" json:"workflow_id"`
	Status      string             `bson:"status" json:"status"`
	UsageCount  int64              `bson:"usage_count" json:"usage_count"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// FieldByID returns the field with the given id.
func (f *Form) FieldByID(id string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i], true
		}
	}
	return nil, false
}
