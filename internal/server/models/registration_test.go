package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistration_EditableNormalizesNulls(t *testing.T) {
	r := &Registration{FirstName: "Ada", LastName: "Lovelace", PaymentStatus: PaymentPaid}
	f := r.Editable()

	assert.Equal(t, "", f.AwardCategory)
	snap := f.Snapshot()
	assert.Equal(t, "", snap["award_category"])
	assert.Equal(t, "paid", snap["payment_status"])
	assert.Equal(t, 0, snap["vehicle_year"])
}

func TestRegistrationFields_Award(t *testing.T) {
	assert.Nil(t, RegistrationFields{}.Award())
	got := RegistrationFields{AwardCategory: "Best Paint"}.Award()
	if assert.NotNil(t, got) {
		assert.Equal(t, "Best Paint", *got)
	}
}

func TestRegistration_Names(t *testing.T) {
	r := &Registration{FirstName: "Ada", LastName: "Lovelace", VehicleYear: 1967, VehicleMake: "Ford", VehicleModel: "Mustang"}
	assert.Equal(t, "Ada Lovelace", r.OwnerName())
	assert.Equal(t, "1967 Ford Mustang", r.VehicleName())
	assert.Equal(t, "Ford", (&Registration{VehicleMake: "Ford"}).VehicleName())
}

func TestRegistrationFilter(t *testing.T) {
	paid := &Registration{PaymentStatus: PaymentPaid}
	archived := &Registration{PaymentStatus: PaymentArchived}

	assert.True(t, RegistrationFilter{}.Matches(paid))
	assert.False(t, RegistrationFilter{}.Matches(archived))
	assert.True(t, RegistrationFilter{IncludeArchived: true}.Matches(archived))
	assert.True(t, RegistrationFilter{Status: PaymentArchived}.Matches(archived))
	assert.False(t, RegistrationFilter{Status: PaymentPending}.Matches(paid))
}
