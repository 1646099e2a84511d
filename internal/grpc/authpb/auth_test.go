package authpb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestParseAuthenticateRequest(t *testing.T) {
	creds, err := ParseAuthenticateRequest(NewAuthenticateRequest("alice", "pw1"))
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "alice", Password: "pw1"}, creds)

	_, err = ParseAuthenticateRequest(&structpb.Struct{})
	assert.Error(t, err)

	_, err = ParseAuthenticateRequest(&structpb.Struct{Fields: map[string]*structpb.Value{
		"username": structpb.NewNumberValue(1),
		"password": structpb.NewStringValue("x"),
	}})
	assert.Error(t, err)
}

func TestParsePrincipalResponse(t *testing.T) {
	want := Principal{ID: 42, Name: "admin", IsAdmin: true}

	got, err := ParsePrincipalResponse(NewPrincipalResponse(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParsePrincipalResponse(&structpb.Struct{})
	assert.Error(t, err)
}

func TestPrincipalResponse_KeepsLargeIDs(t *testing.T) {
	for _, id := range []int64{1<<53 + 1, math.MaxInt64} {
		got, err := ParsePrincipalResponse(NewPrincipalResponse(Principal{ID: id, Name: "alice"}))
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	}

	_, err := ParsePrincipalResponse(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewNumberValue(42),
		"name": structpb.NewStringValue("alice"),
	}})
	assert.Error(t, err)

	_, err = ParsePrincipalResponse(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewStringValue("4.2e1"),
		"name": structpb.NewStringValue("alice"),
	}})
	assert.Error(t, err)
}
