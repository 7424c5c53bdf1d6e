package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// --- Mocks ---

type mockSongRepo struct {
	mu       sync.Mutex
	songs    map[string]domain.Song
	saveErr  error
	moodErr  error
	moodSets int
}

func newMockSongRepo(songs ...domain.Song) *mockSongRepo {
	m := &mockSongRepo{songs: map[string]domain.Song{}}
	for _, s := range songs {
		m.songs[s.ID] = s
	}
	return m
}

func (m *mockSongRepo) GetSong(ctx context.Context, id string) (domain.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return domain.Song{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSongRepo) ListSongs(ctx context.Context) ([]domain.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Song, 0, len(m.songs))
	for _, s := range m.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *mockSongRepo) SaveSong(ctx context.Context, s domain.Song) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.songs[s.ID] = s
	return nil
}

func (m *mockSongRepo) DeleteSong(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.songs, id)
	return nil
}

func (m *mockSongRepo) UpdateSongMood(ctx context.Context, id string, mood domain.Mood, confidence float64) error {
	if m.moodErr != nil {
		return m.moodErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Mood = mood
	s.MoodConfidence = confidence
	m.songs[id] = s
	m.moodSets++
	return nil
}

func (m *mockSongRepo) UpdateSongDuration(ctx context.Context, id string, durationMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.DurationMs = durationMs
	m.songs[id] = s
	return nil
}

// memAssets is an in-memory AssetStore that counts open readers.
type memAssets struct {
	mu      sync.Mutex
	files   map[string][]byte
	putErr  error
	opened  int
	closed  int
	deleted []string
}

func newMemAssets() *memAssets {
	return &memAssets{files: map[string][]byte{}}
}

func (m *memAssets) Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = b
	return nil
}

func (m *memAssets) Stat(ctx context.Context, key string) (domain.AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	if !ok {
		return domain.AssetInfo{}, domain.ErrNotFound
	}
	return domain.AssetInfo{Key: key, Size: int64(len(b))}, nil
}

func (m *memAssets) OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if offset < 0 || offset+length > int64(len(b)) {
		return nil, errors.New("window out of bounds")
	}
	m.opened++
	return &countingCloser{Reader: bytes.NewReader(b[offset : offset+length]), onClose: func() {
		m.mu.Lock()
		m.closed++
		m.mu.Unlock()
	}}, nil
}

func (m *memAssets) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type countingCloser struct {
	io.Reader
	onClose func()
}

func (c *countingCloser) Close() error {
	c.onClose()
	return nil
}

type mockPredictor struct {
	prediction domain.Prediction
	calls      int
}

func (m *mockPredictor) Predict(ctx context.Context, lyrics string) domain.Prediction {
	m.calls++
	return m.prediction
}

type mockPlaylistRepo struct {
	playlists map[string]domain.Playlist
	saveErr   error
}

func newMockPlaylistRepo() *mockPlaylistRepo {
	return &mockPlaylistRepo{playlists: map[string]domain.Playlist{}}
}

func (m *mockPlaylistRepo) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return domain.Playlist{}, domain.ErrNotFound
	}
	p.SongIDs = append([]string{}, p.SongIDs...)
	return p, nil
}

func (m *mockPlaylistRepo) FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error) {
	for _, p := range m.playlists {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Playlist{}, domain.ErrNotFound
}

func (m *mockPlaylistRepo) SavePlaylist(ctx context.Context, p domain.Playlist) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.playlists[p.ID] = p
	return nil
}

func (m *mockPlaylistRepo) DeletePlaylist(ctx context.Context, id string) error {
	delete(m.playlists, id)
	return nil
}

type mockCommentRepo struct {
	comments []domain.Comment
}

func (m *mockCommentRepo) AddComment(ctx context.Context, c domain.Comment) error {
	m.comments = append([]domain.Comment{c}, m.comments...)
	return nil
}

func (m *mockCommentRepo) ListComments(ctx context.Context, songID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.comments {
		if c.SongID == songID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockProber struct {
	meta domain.AudioMetadata
	err  error
}

func (m *mockProber) Probe(r io.ReadSeeker) (domain.AudioMetadata, error) {
	// consume some input so the caller has to rewind
	_, _ = io.CopyN(io.Discard, r, 4)
	return m.meta, m.err
}

type recordingQueue struct {
	ids []string
}

func (q *recordingQueue) Enqueue(songID string) {
	q.ids = append(q.ids, songID)
}
