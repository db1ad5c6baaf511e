package handlers

import "testing"

func TestMenuItemRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  menuItemRequest
		ok   bool
	}{
		{"valid", menuItemRequest{Name: "Masala Fries", Price: 120, Category: "Bites"}, true},
		{"trims name", menuItemRequest{Name: "  Cold Coffee  ", Price: 80, Category: "Brews"}, true},
		{"empty name", menuItemRequest{Name: "   ", Price: 10, Category: "Bites"}, false},
		{"negative price", menuItemRequest{Name: "Soda", Price: -1, Category: "Brews"}, false},
		{"bad category", menuItemRequest{Name: "Soda", Price: 10, Category: "Drinks"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := tc.req.validate()
			if ok != tc.ok {
				t.Fatalf("validate() = (%q, %v), expected ok=%v", msg, ok, tc.ok)
			}
			if !ok && msg == "" {
				t.Fatal("failed validation must carry a message")
			}
		})
	}
}

func TestStaffRequestValidate(t *testing.T) {
	valid := staffRequest{
		Name:           "Asha",
		DateOfBirth:    "1994-06-02",
		Staff:          "Kitchen",
		EmploymentType: "Full-Time",
	}
	if _, msg, ok := valid.validate(); !ok {
		t.Fatalf("expected valid request, got %q", msg)
	}

	bad := []staffRequest{
		{Name: "", DateOfBirth: "1994-06-02", Staff: "Kitchen", EmploymentType: "Full-Time"},
		{Name: "Asha", DateOfBirth: "02/06/1994", Staff: "Kitchen", EmploymentType: "Full-Time"},
		{Name: "Asha", DateOfBirth: "1994-06-02", Staff: "Bar", EmploymentType: "Full-Time"},
		{Name: "Asha", DateOfBirth: "1994-06-02", Staff: "Dining", EmploymentType: "Contract"},
	}
	for i, req := range bad {
		if _, _, ok := req.validate(); ok {
			t.Fatalf("case %d: expected validation failure for %+v", i, req)
		}
	}

	dob, _, ok := valid.validate()
	if !ok || dob.Year() != 1994 || dob.Month() != 6 || dob.Day() != 2 {
		t.Fatalf("date of birth parsed wrong: %v", dob)
	}
}
