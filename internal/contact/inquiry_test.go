package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled() Inquiry {
	return Inquiry{
		Name:        "Alice",
		Email:       "a@b.com",
		InquiryType: General,
		Message:     "Hi",
	}
}

func TestCompleteRequiresFourFields(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  bool
	}{
		{"missing name", FieldName, false},
		{"missing email", FieldEmail, false},
		{"missing inquiry type", FieldInquiryType, false},
		{"missing message", FieldMessage, false},
		{"missing company", FieldCompany, true},
		{"missing position", FieldPosition, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := filled().With(FieldCompany, "Acme")
			require.NoError(t, err)
			f, err = f.With(FieldPosition, "Analyst")
			require.NoError(t, err)

			f, err = f.With(tt.field, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Complete())
		})
	}

	assert.True(t, filled().Complete())
	assert.False(t, Inquiry{}.Complete())
}

func TestCompleteDoesNotCheckEmailShape(t *testing.T) {
	f, err := filled().With(FieldEmail, "not an email")
	require.NoError(t, err)
	assert.True(t, f.Complete())
}

func TestCompleteRequiresKnownInquiryType(t *testing.T) {
	for _, it := range InquiryTypes() {
		f, err := filled().With(FieldInquiryType, string(it))
		require.NoError(t, err)
		assert.True(t, f.Complete(), it)
	}

	f, err := filled().With(FieldInquiryType, "Sponsorship")
	require.NoError(t, err)
	assert.False(t, f.Complete())
}

func TestWithReplacesOneField(t *testing.T) {
	base := Inquiry{Company: "Initech", Message: "hello"}

	a, err := base.With(FieldEmail, "x@y.com")
	require.NoError(t, err)
	a, err = a.With(FieldName, "Alice")
	require.NoError(t, err)

	b, err := base.With(FieldName, "Alice")
	require.NoError(t, err)
	b, err = b.With(FieldEmail, "x@y.com")
	require.NoError(t, err)

	want := Inquiry{Name: "Alice", Email: "x@y.com", Company: "Initech", Message: "hello"}
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
	assert.Equal(t, Inquiry{Company: "Initech", Message: "hello"}, base, "original snapshot must not change")
}

func TestWithIsIdempotent(t *testing.T) {
	once, err := filled().With(FieldCompany, "Acme")
	require.NoError(t, err)
	twice, err := once.With(FieldCompany, "Acme")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestWithUnknownField(t *testing.T) {
	f := filled()
	got, err := f.With("phone", "555")
	assert.Error(t, err)
	assert.Equal(t, f, got)
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseField("_subject")
	assert.Error(t, err)
}

func TestGetMirrorsWith(t *testing.T) {
	f := Inquiry{}
	for _, field := range Fields {
		var err error
		f, err = f.With(field, "v-"+string(field))
		require.NoError(t, err)
	}
	for _, field := range Fields {
		assert.Equal(t, "v-"+string(field), f.Get(field))
	}
}

func TestPayloadSubject(t *testing.T) {
	f := filled()
	f.InquiryType = FullTime
	p := f.Payload()

	assert.Equal(t, "Full-time Job Inquiry from Alice", p.Subject)
	assert.Equal(t, "Full-time Job", p.InquiryType)
	assert.Equal(t, "Hi", p.Message)
}

func TestInquiryTypeLabels(t *testing.T) {
	assert.Len(t, InquiryTypes(), 6)
	assert.Equal(t, "Full-time Job Opportunity", FullTime.Label())
	assert.Equal(t, "General Inquiry", General.Label())
	assert.Equal(t, "Other", InquiryType("Other").Label())
}
