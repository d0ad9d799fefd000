package student

import "testing"

func TestNextHandle(t *testing.T) {
	domain := "school.edu"

	tests := []struct {
		name     string
		existing []string
		offset   int
		want     string
	}{
		{name: "no accounts", want: "std_00@school.edu"},
		{name: "no matching accounts", existing: []string{"admin@school.edu", "std_x@school.edu", "std@school.edu"}, want: "std_00@school.edu"},
		{name: "max + 1", existing: []string{"std_00@school.edu", "std_01@school.edu"}, want: "std_02@school.edu"},
		{name: "gaps are not reused", existing: []string{"std_00@school.edu", "std_07@school.edu"}, want: "std_08@school.edu"},
		{name: "unordered", existing: []string{"std_11@school.edu", "std_03@school.edu", "teacher@school.edu"}, want: "std_12@school.edu"},
		{name: "past two digits", existing: []string{"std_99@school.edu"}, want: "std_100@school.edu"},
		{name: "other domains count", existing: []string{"std_04@old.school.edu"}, want: "std_05@school.edu"},
		{name: "upper case", existing: []string{"STD_05@SCHOOL.EDU"}, want: "std_06@school.edu"},
		{name: "offset", existing: []string{"std_00@school.edu", "std_01@school.edu"}, offset: 1, want: "std_03@school.edu"},
		{name: "offset on empty", offset: 1, want: "std_01@school.edu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextHandle(tt.existing, domain, tt.offset); got != tt.want {
				t.Errorf("NextHandle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocalPartIssuer(t *testing.T) {
	tests := []struct {
		handle string
		want   string
	}{
		{handle: "std_02@school.edu", want: "std_02"},
		{handle: "std_100@a.b.c", want: "std_100"},
		{handle: "no-domain", want: "no-domain"},
	}
	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			if got := (LocalPartIssuer{}).Issue(tt.handle); got != tt.want {
				t.Errorf("Issue() = %v, want %v", got, tt.want)
			}
		})
	}
}
