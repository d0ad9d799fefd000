package subject_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/subject"
	dummydb "github.com/schoolmate/backend/storage/database/dummy"
	testutil "github.com/schoolmate/backend/tests"
)

func newService() *subject.Service {
	validate, _ := testutil.NewValidator()
	return subject.NewService(dummydb.NewSubjectRepository(dummydb.Open()), validate)
}

func codes(offerings []subject.Offering) []string {
	res := make([]string, 0, len(offerings))
	for _, o := range offerings {
		res = append(res, o.Code)
	}
	return res
}

func TestService_Create(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	math, err := svc.Create(ctx, subject.NewOffering{Name: " Mathematics ", Grade: 7})
	require.NoError(t, err)
	assert.Equal(t, "SM001", math.Code)
	assert.Equal(t, "Mathematics", math.Name)
	assert.NotEmpty(t, math.ID)

	bio, err := svc.Create(ctx, subject.NewOffering{Name: "Biology", Grade: 8})
	require.NoError(t, err)
	assert.Equal(t, "SM002", bio.Code)

	require.NoError(t, svc.Delete(ctx, bio.ID))

	chem, err := svc.Create(ctx, subject.NewOffering{Name: "Chemistry", Grade: 8})
	require.NoError(t, err)
	assert.Equal(t, "SM003", chem.Code, "codes of deleted subjects are never reused")
}

func TestService_Create_validation(t *testing.T) {
	tests := []struct {
		name  string
		no    subject.NewOffering
		field string
	}{
		{name: "grade too low", no: subject.NewOffering{Name: "Art", Grade: 5}, field: "grade"},
		{name: "grade too high", no: subject.NewOffering{Name: "Art", Grade: 14}, field: "grade"},
		{name: "missing grade", no: subject.NewOffering{Name: "Art"}, field: "grade"},
		{name: "blank name", no: subject.NewOffering{Name: "  ", Grade: 7}, field: "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()
			_, err := svc.Create(context.Background(), tt.no)
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Create() error = %v, want validator.ValidationErrors", err)
			}
			assert.Equal(t, tt.field, vErrs[0].Field())

			all, err := svc.Query(context.Background(), nil, nil)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}

	t.Run("bounds are valid", func(t *testing.T) {
		svc := newService()
		for _, grade := range []int{core.MinGrade, core.MaxGrade} {
			_, err := svc.Create(context.Background(), subject.NewOffering{Name: "Art", Grade: grade})
			assert.NoError(t, err)
		}
	})
}

func TestService_Query(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	create := func(name string, grade int) subject.Offering {
		off, err := svc.Create(ctx, subject.NewOffering{Name: name, Grade: grade})
		require.NoError(t, err)
		return off
	}
	physics := create("Physics", 9)
	art := create("Art", 7)
	algebra := create("Algebra", 9)

	grade9 := 9

	tests := []struct {
		name     string
		filter   *subject.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "insertion order", want: []string{physics.Code, art.Code, algebra.Code}},
		{name: "grade", filter: &subject.QueryFilter{Grade: &grade9}, want: []string{physics.Code, algebra.Code}},
		{name: "by name", ordering: []core.DBOrdering{{Field: "name", Ascending: true}}, want: []string{algebra.Code, art.Code, physics.Code}},
		{name: "by code desc", ordering: []core.DBOrdering{{Field: "code"}}, want: []string{"SM003", "SM002", "SM001"}},
		{name: "search name", filter: &subject.QueryFilter{Search: "PHYS"}, want: []string{physics.Code}},
		{name: "search code", filter: &subject.QueryFilter{Search: "sm002"}, want: []string{art.Code}},
		{name: "no match", filter: &subject.QueryFilter{Search: "history"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(got))
		})
	}

	t.Run("invalid ordering", func(t *testing.T) {
		_, err := svc.Query(ctx, nil, []core.DBOrdering{{Field: "id"}})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Query() error = %v, want *core.ValidationError", err)
		}
	})
}

func TestService_Query_codesPastSM999(t *testing.T) {
	validate, _ := testutil.NewValidator()
	repo := dummydb.NewSubjectRepository(dummydb.Open())
	svc := subject.NewService(repo, validate)
	ctx := context.Background()

	for _, seq := range []int64{1000, 999, 10} {
		_, err := repo.CreateOffering(ctx, subject.Offering{Code: subject.FormatCode(seq), Name: "Art", Grade: 7})
		require.NoError(t, err)
	}

	got, err := svc.Query(ctx, nil, []core.DBOrdering{{Field: "code", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"SM010", "SM999", "SM1000"}, codes(got))

	got, err = svc.Query(ctx, nil, []core.DBOrdering{{Field: "code"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"SM1000", "SM999", "SM010"}, codes(got))
}

func TestCodeNumber(t *testing.T) {
	tests := []struct {
		code string
		want int64
	}{
		{code: "SM001", want: 1},
		{code: "SM999", want: 999},
		{code: "SM1000", want: 1000},
		{code: "XX001", want: 0},
		{code: "SMabc", want: 0},
		{code: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, subject.CodeNumber(tt.code))
		})
	}
}

func TestService_Update(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	off, err := svc.Create(ctx, subject.NewOffering{Name: "Physics", Grade: 9})
	require.NoError(t, err)

	strPtr := func(s string) *string { return &s }
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name    string
		id      string
		uo      subject.UpdateOffering
		wantErr error
		want    subject.Offering
	}{
		{name: "not found", id: "unknown", uo: subject.UpdateOffering{Name: strPtr("X")}, wantErr: subject.ErrNotFound},
		{
			name: "code is ignored",
			id:   off.ID,
			uo:   subject.UpdateOffering{Name: strPtr("Applied Physics"), Grade: intPtr(10), Code: strPtr("SM999")},
			want: subject.Offering{ID: off.ID, Code: "SM001", Name: "Applied Physics", Grade: 10},
		},
		{
			name: "partial",
			id:   off.ID,
			uo:   subject.UpdateOffering{Grade: intPtr(11)},
			want: subject.Offering{ID: off.ID, Code: "SM001", Name: "Applied Physics", Grade: 11},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Update(ctx, tt.id, tt.uo)
			if err != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			assert.Equal(t, tt.want.Code, got.Code)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Grade, got.Grade)
			assert.Equal(t, off.CreatedAt, got.CreatedAt)

			stored, err := svc.GetByID(ctx, off.ID)
			require.NoError(t, err)
			assert.Equal(t, got, stored)
		})
	}

	t.Run("invalid grade", func(t *testing.T) {
		_, err := svc.Update(ctx, off.ID, subject.UpdateOffering{Grade: intPtr(3)})
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("Update() error = %v, want validator.ValidationErrors", err)
		}
	})
}

func TestService_Delete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	off, err := svc.Create(ctx, subject.NewOffering{Name: "Physics", Grade: 9})
	require.NoError(t, err)

	if err = svc.Delete(ctx, "unknown"); err != subject.ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, subject.ErrNotFound)
	}
	require.NoError(t, svc.Delete(ctx, off.ID))
	if _, err = svc.GetByID(ctx, off.ID); err != subject.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, subject.ErrNotFound)
	}
	if err = svc.Delete(ctx, off.ID); err != subject.ErrNotFound {
		t.Errorf("Delete() twice error = %v, want %v", err, subject.ErrNotFound)
	}
}
