package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yerassyl04/rhythm-duel/models"
)

func TestSongServiceRemoveJacket(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	songRepo := &fakeSongRepo{songs: map[int]models.Song{
		5: {ID: 5, Title: "Opener", Difficulty: "EX"},
	}}
	uploader := &fakeUploader{}
	svc := NewSongService(songRepo, uploader)
	ctx := context.Background()

	key := "songs/5/jacket"
	require.NoError(songRepo.UpdateJacketKey(ctx, 5, &key))

	cleared, err := svc.RemoveJacket(ctx, 5)
	assert.NoError(err)
	assert.Nil(cleared.JacketKey)
	assert.Nil(cleared.JacketURL)
	assert.Equal([]string{key}, uploader.deleted)

	// Already bare: nothing left to delete.
	_, err = svc.RemoveJacket(ctx, 5)
	assert.NoError(err)
	assert.Len(uploader.deleted, 1)

	_, err = svc.RemoveJacket(ctx, 404)
	assert.ErrorIs(err, ErrNotFound)

	bare := NewSongService(songRepo, nil)
	_, err = bare.RemoveJacket(ctx, 5)
	assert.ErrorIs(err, ErrUploaderNotConfigured)
}
