package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValues_PreservesOrderAndDuplicates(t *testing.T) {
	var kv KeyValues
	require.NoError(t, json.Unmarshal([]byte(`{"z":"1","a":"2","z":"3"}`), &kv))

	assert.Equal(t, KeyValues{{"z", "1"}, {"a", "2"}, {"z", "3"}}, kv)

	out, err := json.Marshal(kv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":"3","a":"2"}`, string(out)) // JSONEq collapses duplicates
	assert.Equal(t, `{"z":"1","a":"2","z":"3"}`, string(out))
}

func TestKeyValues_RejectsNonObject(t *testing.T) {
	var kv KeyValues
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &kv))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &kv))

	require.NoError(t, json.Unmarshal([]byte(`null`), &kv))
	assert.Nil(t, kv)
}

func TestRequest_ParamsSurviveRoundTrip(t *testing.T) {
	for _, params := range []KeyValues{nil, {}, {{"a", "1"}}} {
		req := NewRequest()
		req.Params = params

		data, err := json.Marshal(req)
		require.NoError(t, err)
		var got Request
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, req, got, "%s", data)
	}
}

func TestRequest_AuthRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		auth Auth
		wire string
	}{
		{name: "none", auth: NoAuth{}, wire: `{"type":"none"}`},
		{name: "basic", auth: BasicAuth{Username: "u", Password: "p"}, wire: `{"type":"basic","credentials":{"username":"u","password":"p"}}`},
		{name: "bearer", auth: BearerAuth{Token: "t"}, wire: `{"type":"bearer","credentials":{"token":"t"}}`},
		{name: "apikey", auth: APIKeyAuth{Key: "k", Value: "v", Location: APIKeyInQuery}, wire: `{"type":"apikey","credentials":{"key":"k","value":"v","location":"query"}}`},
		{name: "oauth2", auth: OAuth2Auth{TokenURL: "https://auth/token", ClientID: "id", ClientSecret: "s", Scopes: []string{"a"}}, wire: `{"type":"oauth2","credentials":{"tokenUrl":"https://auth/token","clientId":"id","clientSecret":"s","scopes":["a"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{ID: "1", Name: "n", URL: "https://x", Method: "GET", Auth: tt.auth}

			data, err := json.Marshal(req)
			require.NoError(t, err)

			var raw map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.JSONEq(t, tt.wire, string(raw["auth"]))

			var back Request
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, req, back)
		})
	}
}

func TestRequest_AuthDecodeEdgeCases(t *testing.T) {
	var r Request
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","auth":{"type":"bearer"}}`), &r))
	assert.Equal(t, NoAuth{}, r.Auth, "missing credentials applies nothing")

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1"}`), &r))
	assert.Nil(t, r.Auth)

	err := json.Unmarshal([]byte(`{"id":"1","auth":{"type":"digest","credentials":{}}}`), &r)
	assert.ErrorContains(t, err, "unknown auth type")
}

func TestRequest_CloneIsDeep(t *testing.T) {
	orig := Request{
		ID:      "1",
		Headers: map[string]string{"A": "1"},
		Params:  KeyValues{{"p", "1"}},
		Body:    map[string]any{"nested": []any{map[string]any{"x": 1.0}}},
		Auth:    OAuth2Auth{Scopes: []string{"read"}},
	}

	cp := orig.Clone()
	orig.Headers["A"] = "2"
	orig.Params[0].Value = "2"
	orig.Body.(map[string]any)["nested"].([]any)[0].(map[string]any)["x"] = 2.0
	orig.Auth.(OAuth2Auth).Scopes[0] = "write"

	assert.Equal(t, "1", cp.Headers["A"])
	assert.Equal(t, "1", cp.Params[0].Value)
	assert.Equal(t, 1.0, cp.Body.(map[string]any)["nested"].([]any)[0].(map[string]any)["x"])
	assert.Equal(t, "read", cp.Auth.(OAuth2Auth).Scopes[0])
}

func TestCollection_UpsertAndFlatten(t *testing.T) {
	c := Collection{
		ID:       "c",
		Requests: []Request{{ID: "1", Name: "one"}},
		Folders: []Folder{{
			Name:     "users",
			Requests: []Request{{ID: "2", Name: "two"}},
			Folders:  []Folder{{Name: "admin", Requests: []Request{{ID: "3", Name: "three"}}}},
		}},
	}

	replaced := c.Upsert(Request{ID: "1", Name: "uno"})
	require.NotNil(t, replaced)
	assert.Equal(t, "one", replaced.Name)
	assert.Nil(t, c.Upsert(Request{ID: "4", Name: "four"}))
	assert.Equal(t, []string{"uno", "four"}, []string{c.Requests[0].Name, c.Requests[1].Name})

	flat := c.Flatten()
	require.Len(t, flat, 4)
	assert.Equal(t, "", flat[0].Path)
	assert.Equal(t, "users", flat[2].Path)
	assert.Equal(t, "users/admin", flat[3].Path)

	r, ok := c.FindRequestByName("THREE")
	require.True(t, ok)
	assert.Equal(t, "3", r.ID)
}

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest()
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "New Request", r.Name)
	assert.Equal(t, MethodGet, r.Method)
	assert.Equal(t, BodyNone, r.BodyType)
	assert.NotNil(t, r.Headers)
	assert.NotEqual(t, r.ID, NewRequest().ID)
}
