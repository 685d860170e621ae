package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type priced struct {
	Name  string          `validate:"required,min=3"`
	Price decimal.Decimal `validate:"gte=0,lte=10000"`
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		val     priced
		wantErr bool
	}{
		{"valid", priced{Name: "Keyboard", Price: decimal.RequireFromString("19.99")}, false},
		{"zero price", priced{Name: "Sticker", Price: decimal.Zero}, false},
		{"negative price", priced{Name: "Keyboard", Price: decimal.RequireFromString("-0.01")}, true},
		{"price too high", priced{Name: "Keyboard", Price: decimal.RequireFromString("10000.01")}, true},
		{"short name", priced{Name: "ab", Price: decimal.NewFromInt(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.val)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID(GenerateID()); err != nil {
		t.Fatalf("generated id rejected: %v", err)
	}
	if err := CheckID("not-an-id"); err == nil {
		t.Fatal("expected malformed id to be rejected")
	}
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestCheckReportsEveryField(t *testing.T) {
	err := Check(signup{Email: "nope", Password: "short"})

	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if len(fe) != 2 {
		t.Fatalf("expected two failing fields, got %v", fe)
	}
	if _, ok := fe["email"]; !ok {
		t.Fatalf("expected the json name as key, got %v", fe)
	}
}
