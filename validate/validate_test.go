package validate

import (
	"testing"
)

type course struct {
	Title       string `json:"title" validate:"required,max=10"`
	Description string `json:"description" validate:"required,min=5"`
	Price       int    `json:"price" validate:"gte=0"`
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		val        course
		wantFields []string
		wantMsg    string
	}{
		{name: "valid", val: course{Title: "Go", Description: "Learn Go"}},
		{name: "missing title", val: course{Description: "Learn Go"}, wantFields: []string{"title"}, wantMsg: "title is a required field"},
		{name: "all wrong", val: course{Title: "a very long title", Description: "Go", Price: -1}, wantFields: []string{"title", "description", "price"}, wantMsg: "title must be a maximum of 10 characters in length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.val)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Check() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Check() expected an error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Check() error = %q, want %q", err.Error(), tt.wantMsg)
			}

			fields, ok := Fields(err)
			if !ok {
				t.Fatalf("Fields() found no field errors in %v", err)
			}
			if len(fields) != len(tt.wantFields) {
				t.Errorf("Fields() = %v, want keys %v", fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if fields[f] == "" {
					t.Errorf("Fields() missing %q in %v", f, fields)
				}
			}
		})
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID(GenerateID()); err != nil {
		t.Errorf("CheckID(GenerateID()) error = %v", err)
	}
	if err := CheckID("12"); err == nil {
		t.Error("CheckID(\"12\") expected an error")
	}
}
