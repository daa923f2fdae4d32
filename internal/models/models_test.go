package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{19.999, 20.00},
		{499.995, 500.00},
		{10.005, 10.01},
		{10.004, 10.00},
		{0.1 + 0.2, 0.30},
		{1234, 1234},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundCents(tc.in), "RoundCents(%v)", tc.in)
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var body struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "499.995", "c": null}`), &body))

	assert.Equal(t, Amount(12.5), body.A)
	assert.Equal(t, Amount(500), body.B.Rounded())
	assert.Equal(t, Amount(0), body.C)
}

func TestAmount_UnmarshalJSON_Rejects(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
}

func TestCategory_HasTestNamed(t *testing.T) {
	c := Category{Tests: []Test{{Name: "CBC"}, {Name: "Lipid Profile"}}}

	assert.True(t, c.HasTestNamed("cbc"))
	assert.True(t, c.HasTestNamed("  LIPID profile "))
	assert.False(t, c.HasTestNamed("Thyroid Panel"))
}

func TestCategory_RemoveTestAtKeepsOrder(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	c := Category{Tests: []Test{{ID: ids[0], Name: "A"}, {ID: ids[1], Name: "B"}, {ID: ids[2], Name: "C"}}}

	i := c.TestIndex(ids[1])
	require.Equal(t, 1, i)
	c.RemoveTestAt(i)

	require.Len(t, c.Tests, 2)
	assert.Equal(t, "A", c.Tests[0].Name)
	assert.Equal(t, "C", c.Tests[1].Name)
	assert.Equal(t, -1, c.TestIndex(ids[1]))
}

func TestPatient_NormalizeFillsEmptyLists(t *testing.T) {
	p := Patient{Name: "Jane"}
	p.Normalize()

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"addresses":[]`)
	assert.Contains(t, string(out), `"emergencyContacts":[]`)
}

func TestLaboratory_PasswordNeverSerialized(t *testing.T) {
	out, err := json.Marshal(Laboratory{Name: "Lab", Email: "lab@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
}

func TestValidStatuses(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderConfirmed))
	assert.False(t, ValidOrderStatus("shipped"))
	assert.True(t, ValidPaymentStatus(PaymentCOD))
	assert.False(t, ValidPaymentStatus("cod"))
}
