package models

import (
	"testing"
	"time"
)

func TestCreation_Clone(t *testing.T) {
	orig := &Creation{
		ID:        "c1",
		OwnerID:   "u1",
		Name:      "Neural Artifact",
		Content:   "<html></html>",
		UpdatedAt: time.Now(),
	}

	cp := orig.Clone()
	if cp == orig {
		t.Fatal("Clone() returned the same pointer")
	}
	if *cp != *orig {
		t.Errorf("Clone() = %+v, want %+v", cp, orig)
	}

	cp.Content = "<html>changed</html>"
	if orig.Content != "<html></html>" {
		t.Error("mutating clone changed the original")
	}
}

func TestCreation_Clone_Nil(t *testing.T) {
	var c *Creation
	if c.Clone() != nil {
		t.Error("Clone() on nil should return nil")
	}
}

func TestImageInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   *ImageInput
		wantErr error
	}{
		{"nil input", nil, nil},
		{"valid png", &ImageInput{Data: "aGVsbG8=", Mime: "image/png"}, nil},
		{"valid no mime", &ImageInput{Data: "aGVsbG8="}, nil},
		{"empty data", &ImageInput{Data: "  ", Mime: "image/png"}, ErrNoImageData},
		{"non-image mime", &ImageInput{Data: "aGVsbG8=", Mime: "text/html"}, ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.input.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestArchiveAction_IsValid(t *testing.T) {
	for _, a := range ValidActions() {
		if !a.IsValid() {
			t.Errorf("IsValid() = false for %s", a)
		}
	}
	if ArchiveAction("optimize").IsValid() {
		t.Error("IsValid() = true for unknown action")
	}
}
