package server

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"visage/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadProfilePicture(t *testing.T) {
	t.Parallel()

	srv, app := newTestServer(t)
	userID := registerUser(t, app, testUsername, testEmail, testPassword)
	token := loginUser(t, app, testUsername, testPassword)

	t.Run("requires auth", func(t *testing.T) {
		req := multipartUpload(t, "/v1/users/profile-pictures", "avatar.png", "image/png", []byte("png-bytes"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects non-image content type", func(t *testing.T) {
		req := withBearer(multipartUpload(t, "/v1/users/profile-pictures", "resume.pdf", "application/pdf", []byte("%PDF")), token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		content := bytes.Repeat([]byte{0xAB}, service.MaxPictureBytes+1)
		req := withBearer(multipartUpload(t, "/v1/users/profile-pictures", "big.png", "image/png", content), token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("upload then replace", func(t *testing.T) {
		req := withBearer(multipartUpload(t, "/v1/users/profile-pictures", "first.png", "image/png", []byte("first-bytes")), token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var first PictureResponse
		decodeJSON(t, resp, &first)
		assert.Equal(t, userID, first.UserID)
		assert.Contains(t, first.URL, first.ID.String())
		firstKey := "pfp/" + first.ID.String() + ".png"
		assert.True(t, srv.blobs.Exists(firstKey))

		// Replacement retires the first picture and removes its blob.
		req = withBearer(multipartUpload(t, "/v1/users/profile-pictures", "second.jpg", "image/jpeg", []byte("second-bytes")), token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var second PictureResponse
		decodeJSON(t, resp, &second)
		assert.NotEqual(t, first.ID, second.ID)
		assert.False(t, srv.blobs.Exists(firstKey), "replaced blob is removed")
		assert.True(t, srv.blobs.Exists("pfp/"+second.ID.String()+".jpg"))

		// The retired record is gone; the replacement resolves.
		gone, err := app.Test(jsonRequest(http.MethodGet, "/v1/users/profile-pictures/"+first.ID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, gone.StatusCode)

		current, err := app.Test(jsonRequest(http.MethodGet, "/v1/users/profile-pictures/"+second.ID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, current.StatusCode)

		// The owner's public view carries the active picture.
		view, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/v1/users/%d", userID), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, view.StatusCode)
		var body struct {
			ProfilePicture *PictureResponse `json:"profile_picture"`
		}
		decodeJSON(t, view, &body)
		require.NotNil(t, body.ProfilePicture)
		assert.Equal(t, second.ID, body.ProfilePicture.ID)
	})
}

func TestGetProfilePicture_Malformed(t *testing.T) {
	t.Parallel()

	_, app := newTestServer(t)
	resp, err := app.Test(jsonRequest(http.MethodGet, "/v1/users/profile-pictures/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProfilePicture(t *testing.T) {
	t.Parallel()

	srv, app := newTestServer(t)
	registerUser(t, app, testUsername, testEmail, testPassword)
	token := loginUser(t, app, testUsername, testPassword)

	t.Run("nothing to delete", func(t *testing.T) {
		req := withBearer(jsonRequest(http.MethodDelete, "/v1/users/profile-pictures", nil), token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("deletes blob and record", func(t *testing.T) {
		req := withBearer(multipartUpload(t, "/v1/users/profile-pictures", "avatar.gif", "image/gif", []byte("gif-bytes")), token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var pic PictureResponse
		decodeJSON(t, resp, &pic)
		key := "pfp/" + pic.ID.String() + ".gif"
		require.True(t, srv.blobs.Exists(key))

		req = withBearer(jsonRequest(http.MethodDelete, "/v1/users/profile-pictures", nil), token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		assert.False(t, srv.blobs.Exists(key))
		gone, err := app.Test(jsonRequest(http.MethodGet, "/v1/users/profile-pictures/"+pic.ID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, gone.StatusCode)
	})
}
