package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchOperationJSON(t *testing.T) {
	tests := []struct {
		name string
		op   PatchOperation
		want string
	}{
		{
			name: "put entity",
			op:   PutEntity("orders", "o1", map[string]string{"title": "flyers"}),
			want: `{"op":"put","key":"orders/o1","value":{"title":"flyers"}}`,
		},
		{
			name: "del entity",
			op:   DeleteEntity("orders", "o2"),
			want: `{"op":"del","key":"orders/o2"}`,
		},
		{
			name: "clear",
			op:   Clear(),
			want: `{"op":"clear"}`,
		},
		{
			name: "sync state marker",
			op:   PutSyncState(SyncStatePartial),
			want: `{"op":"put","key":"_meta/syncState","value":"PARTIAL"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.op)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestPullResponseJSON_EmptyFieldsStay(t *testing.T) {
	resp := PullResponse{
		Cookie:                &Cookie{Order: 3},
		LastMutationIDChanges: map[string]int64{},
		Patch:                 []PatchOperation{},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cookie":{"order":3},"lastMutationIDChanges":{},"patch":[]}`, string(data))
}

func TestSyncErrorJSON(t *testing.T) {
	data, err := json.Marshal(ClientStateNotFound())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"ClientStateNotFound"}`, string(data))

	data, err = json.Marshal(VersionNotSupported("pull"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"VersionNotSupported","versionType":"pull"}`, string(data))
}

func TestPullRequestJSON(t *testing.T) {
	body := `{"pullVersion":1,"clientGroupId":"cg-1","cookie":{"order":5},"profileID":"p1","schemaVersion":"2"}`

	var req PullRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, 1, req.PullVersion)
	assert.Equal(t, "cg-1", req.ClientGroupID)
	require.NotNil(t, req.Cookie)
	assert.Equal(t, int64(5), req.Cookie.Order)
}

func TestPullRequestJSON_NilCookie(t *testing.T) {
	var req PullRequest
	require.NoError(t, json.Unmarshal([]byte(`{"pullVersion":1,"clientGroupId":"cg-1","cookie":null}`), &req))
	assert.Nil(t, req.Cookie)
}

func TestPushRequestJSON(t *testing.T) {
	body := `{"pushVersion":1,"clientGroupId":"cg-1","mutations":[{"id":2,"clientID":"c1","name":"createOrder","args":{"id":"o1"},"timestamp":42}]}`

	var req PushRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Mutations, 1)
	mutation := req.Mutations[0]
	assert.Equal(t, int64(2), mutation.ID)
	assert.Equal(t, "c1", mutation.ClientID)
	assert.Equal(t, "createOrder", mutation.Name)
	assert.JSONEq(t, `{"id":"o1"}`, string(mutation.Args))
}
