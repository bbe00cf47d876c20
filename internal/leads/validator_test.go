package leads

import "testing"

func TestValidateMinimumFields(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name      string
		sub       Submission
		wantValid bool
	}{
		{
			name:      "email and dealer present",
			sub:       Submission{DealerName: "Acme Norte", Email: "ana@example.com"},
			wantValid: true,
		},
		{
			name:      "first name instead of email",
			sub:       Submission{DealerName: "Acme Norte", FirstName: "Ana"},
			wantValid: true,
		},
		{
			name:      "no contact identity",
			sub:       Submission{DealerName: "Acme Norte"},
			wantValid: false,
		},
		{
			name:      "no dealer",
			sub:       Submission{Email: "ana@example.com"},
			wantValid: false,
		},
		{
			name:      "whitespace only counts as absent",
			sub:       Submission{DealerName: "  ", Email: "  "},
			wantValid: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Validate(tc.sub)
			if res.IsValid != tc.wantValid {
				t.Fatalf("IsValid = %v, want %v (errors: %v)", res.IsValid, tc.wantValid, res.Errors)
			}
		})
	}
}

func TestValidateMissingPhoneIsOnlyAWarning(t *testing.T) {
	v := NewValidator()

	res := v.Validate(Submission{DealerName: "Acme Norte", Email: "ana@example.com"})
	if !res.IsValid {
		t.Fatalf("IsValid = false, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly the phone warning", res.Warnings)
	}

	res = v.Validate(Submission{DealerName: "Acme Norte", Email: "ana@example.com", Phone: "+5233112345678"})
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none when phone is present", res.Warnings)
	}
}

func TestValidateBadEmailFormatWarns(t *testing.T) {
	v := NewValidator()

	res := v.Validate(Submission{DealerName: "Acme Norte", Email: "not-an-email", Phone: "+5233112345678"})
	if !res.IsValid {
		t.Fatalf("bad email format must not block processing, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want the email format warning", res.Warnings)
	}
}
