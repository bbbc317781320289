package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullIntCoercion(t *testing.T) {
	cases := []struct {
		body  string
		valid bool
		want  int64
	}{
		{`{"n": 12}`, true, 12},
		{`{"n": "42"}`, true, 42},
		{`{"n": " 7 "}`, true, 7},
		{`{"n": 3.9}`, true, 3},
		{`{"n": -120}`, true, -120},
		{`{"n": ""}`, false, 0},
		{`{"n": null}`, false, 0},
		{`{"n": "NaN"}`, false, 0},
		{`{"n": "abc"}`, false, 0},
		{`{"n": true}`, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			var v struct {
				N NullInt `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.body), &v))
			assert.True(t, v.N.Set)
			assert.Equal(t, tc.valid, v.N.Valid)
			assert.Equal(t, tc.want, v.N.Int64)
			if !tc.valid {
				assert.Nil(t, v.N.Ptr())
			}
		})
	}
}

func TestNullIntAbsentIsUnset(t *testing.T) {
	var v struct {
		N NullInt `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &v))
	assert.False(t, v.N.Set)
}

func TestNullFloatCoercion(t *testing.T) {
	var v struct {
		A NullFloat `json:"a"`
		B NullFloat `json:"b"`
		C NullFloat `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2.5, "b": "0.25", "c": ""}`), &v))
	assert.Equal(t, 2.5, *v.A.Ptr())
	assert.Equal(t, 0.25, *v.B.Ptr())
	assert.True(t, v.C.Set)
	assert.False(t, v.C.Valid)
}

func TestIDRejectsNonPositive(t *testing.T) {
	for _, body := range []string{`{"id": 0}`, `{"id": -3}`, `{"id": 1.5}`, `{"id": "x"}`, `{"id": null}`} {
		var v struct {
			ID ID `json:"id"`
		}
		assert.Error(t, json.Unmarshal([]byte(body), &v), body)
	}

	var v struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": "17"}`), &v))
	assert.Equal(t, int64(17), v.ID.Int64())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("5")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = ParseID("")
	assert.Error(t, err)
	_, err = ParseID("five")
	assert.Error(t, err)
}

func TestNullIDClears(t *testing.T) {
	var v struct {
		EraID NullID `json:"eraId"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"eraId": ""}`), &v))
	assert.True(t, v.EraID.Set)
	assert.Nil(t, v.EraID.Ptr())

	require.NoError(t, json.Unmarshal([]byte(`{"eraId": 9}`), &v))
	assert.Equal(t, int64(9), *v.EraID.Ptr())

	assert.Error(t, json.Unmarshal([]byte(`{"eraId": -1}`), &v))
}

func TestCoerceText(t *testing.T) {
	s, err := CoerceText([]byte(`"  Harbor "`))
	require.NoError(t, err)
	assert.Equal(t, "Harbor", s)

	s, err = CoerceText([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = CoerceText([]byte(`12`))
	assert.Error(t, err)
}
