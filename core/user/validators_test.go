package user

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/schoolmate/backend/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	LoadCommonPasswords(nil)
	return validate
}

func TestNewUser_passwordPolicy(t *testing.T) {
	validate := newValidator()

	newUser := func(pwd string) NewUser {
		return NewUser{
			Name:            "Grace Hopper",
			Email:           "grace.hopper@schoolmate.test",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 1234!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no upper", pwd: "abcd1234!", wantTag: pwdComplexityTag},
		{name: "no special", pwd: "Abcd12345", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "GraceHopper1!", wantTag: pwdAttrSimTag},
		{name: "similar to email", pwd: "Grace.Hopper#1", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", wantTag: pwdNoCommonTag},
		{name: "valid", pwd: "Tr0ub4dor&3xK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(newUser(tt.pwd))
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("validate.Struct() unexpected error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v, want validator.ValidationErrors", err)
			}
			if len(vErrs) != 1 || vErrs[0].Tag() != tt.wantTag || vErrs[0].Field() != "password" {
				t.Errorf("validate.Struct() errors = %v, wantTag %v", vErrs, tt.wantTag)
			}
		})
	}
}

func TestNewUser_roles(t *testing.T) {
	validate := newValidator()
	pwd := "Tr0ub4dor&3xK"

	tests := []struct {
		name    string
		roles   []string
		wantErr bool
	}{
		{name: "no roles", roles: nil},
		{name: "known roles", roles: []string{RoleAdmin, RoleTeacher}},
		{name: "unknown role", roles: []string{RoleTeacher, "janitor:"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{Name: "Alan", Email: "alan@schoolmate.test", Password: pwd, PasswordConfirm: pwd, Roles: tt.roles}
			if err := validate.Struct(nu); (err != nil) != tt.wantErr {
				t.Errorf("validate.Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_roles(t *testing.T) {
	admin := User{Roles: []string{RoleAdminPrincipal}}
	teacher := User{Roles: TeacherRoles}
	student := User{Roles: StudentRoles}

	if !admin.IsAdmin() || !admin.IsStaff() || admin.IsStudent() {
		t.Errorf("admin roles misreported: %v", admin.Roles)
	}
	if !teacher.IsTeacher() || !teacher.IsStaff() || teacher.IsAdmin() {
		t.Errorf("teacher roles misreported: %v", teacher.Roles)
	}
	if !student.IsStudent() || student.IsStaff() {
		t.Errorf("student roles misreported: %v", student.Roles)
	}
	if got := MaxRolePriority(AllRoles); got != RolePriority(RoleAdminOwner) {
		t.Errorf("MaxRolePriority() = %v, want %v", got, RolePriority(RoleAdminOwner))
	}
}
