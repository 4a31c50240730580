package types

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func newBindingValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

func swimmerBody(paymentType string) CreateSwimmerRequestBody {
	return CreateSwimmerRequestBody{
		FirstName:   "Avery",
		LastName:    "Nguyen",
		ParentID:    "5b8acbb3-dbc0-4b3a-bd80-c7ca69e25a33",
		PaymentType: paymentType,
	}
}

func TestSwimmerPaymentTypes(t *testing.T) {
	v := newBindingValidator()

	for _, pt := range []string{"private_pay", "funded", "scholarship", "other"} {
		assert.NoError(t, v.Struct(swimmerBody(pt)), pt)
	}
	for _, pt := range []string{"private", "cash", ""} {
		assert.Error(t, v.Struct(swimmerBody(pt)), pt)
	}

	update := UpdateSwimmerRequestBody{PaymentType: strPtr("scholarship")}
	assert.NoError(t, v.Struct(update))
	update.PaymentType = strPtr("private")
	assert.Error(t, v.Struct(update))
}

func strPtr(s string) *string { return &s }
