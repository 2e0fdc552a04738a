package internal

import (
	"testing"

	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

// -- Test helpers -----------------------------------------------------------------------------------------------------

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// deviceContext builds a context carrying a device fingerprint, as the transport layer would
func deviceContext(fpID string) context.Context {
	ctx := context.WithValue(context.Background(), ctxhelper.KeyLogger, testLogger())
	if fpID != "" {
		ctx = context.WithValue(ctx, ctxhelper.KeyFingerprint, fpID)
	}
	return ctx
}

// stubSongRepo keeps the catalog in a simple map
type stubSongRepo struct {
	songs  map[string]models.Song
	bumped map[string]uint
}

func newStubSongRepo(songs ...models.Song) *stubSongRepo {
	r := &stubSongRepo{
		songs:  map[string]models.Song{},
		bumped: map[string]uint{},
	}
	for _, s := range songs {
		r.songs[s.ID] = s
	}
	return r
}

func (r *stubSongRepo) Create(s *models.Song) error {
	r.songs[s.ID] = *s
	return nil
}

func (r *stubSongRepo) Upsert(s *models.Song) error {
	r.songs[s.ID] = *s
	return nil
}

func (r *stubSongRepo) Update(s *models.Song) error {
	if _, ok := r.songs[s.ID]; !ok {
		return repos.ErrEntityNotExisting
	}
	r.songs[s.ID] = *s
	return nil
}

func (r *stubSongRepo) Delete(id string) error {
	if _, ok := r.songs[id]; !ok {
		return repos.ErrEntityNotExisting
	}
	delete(r.songs, id)
	return nil
}

func (r *stubSongRepo) GetByID(id string) (*models.Song, error) {
	s, ok := r.songs[id]
	if !ok {
		return nil, repos.ErrEntityNotExisting
	}
	return &s, nil
}

func (r *stubSongRepo) Find(search string, offset uint, limit uint) ([]models.Song, uint, error) {
	all, _ := r.All()
	return all, uint(len(all)), nil
}

func (r *stubSongRepo) All() ([]models.Song, error) {
	var ret []models.Song
	for _, s := range r.songs {
		ret = append(ret, s)
	}
	return ret, nil
}

func (r *stubSongRepo) BumpNumRequested(id string) error {
	r.bumped[id]++
	return nil
}

// stubConfigService serves a fixed configuration
type stubConfigService struct {
	conf      models.AppConfig
	whitelist map[string]bool
}

func newStubConfigService() *stubConfigService {
	return &stubConfigService{
		conf: models.AppConfig{
			Restrictions: models.GuestRestrictionConfig{MaxRequestsPerUser: 3},
		},
		whitelist: map[string]bool{},
	}
}

func (s *stubConfigService) WhitelistedFingerprints(ctx context.Context) []string {
	var ret []string
	for fp := range s.whitelist {
		ret = append(ret, fp)
	}
	return ret
}

func (s *stubConfigService) AddToWhitelist(ctx context.Context, fp string) error {
	s.whitelist[fp] = true
	return nil
}

func (s *stubConfigService) RemoveFromWhitelist(ctx context.Context, fp string) error {
	delete(s.whitelist, fp)
	return nil
}

func (s *stubConfigService) IsWhitelisted(fp string) bool {
	return s.whitelist[fp]
}

func (s *stubConfigService) Load(ctx context.Context) error {
	return nil
}

func (s *stubConfigService) LoadFromFile(ctx context.Context, name string) error {
	return nil
}

func (s *stubConfigService) Write(ctx context.Context) error {
	return nil
}

func (s *stubConfigService) WriteToFile(ctx context.Context, name string) error {
	return nil
}

func (s *stubConfigService) GetConfig(ctx context.Context) models.AppConfig {
	return s.conf
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	httpErr, ok := err.(*HTTPError)
	require.True(t, ok, "expected an HTTPError, got %T", err)
	assert.Equal(t, code, httpErr.ErrorCode())
}

func newRequestServiceFixture() (RequestService, *state.Store, *stubSongRepo, *stubConfigService) {
	songs := newStubSongRepo(
		models.Song{ID: "song-1", Title: "Imagine", Artist: "John Lennon", Category: models.CategoryWestern},
		models.Song{ID: "song-2", Title: "Zara Zara", Artist: "Bombay Jayashri", Category: models.CategoryBollywood},
	)
	cs := newStubConfigService()
	store := state.New(nil, 3, testLogger())
	return NewRequestService(store, songs, cs, testLogger()), store, songs, cs
}

// -- Tests ------------------------------------------------------------------------------------------------------------

func TestSubmitHappyPath(t *testing.T) {
	svc, _, songs, _ := newRequestServiceFixture()
	req, err := svc.Submit(deviceContext("dev-a"), "song-1", "Maya", "for mom")
	require.NoError(t, err)
	assert.Equal(t, "song-1", req.SongID)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, uint(1), songs.bumped["song-1"])
}

func TestSubmitUnknownSong(t *testing.T) {
	svc, _, _, _ := newRequestServiceFixture()
	_, err := svc.Submit(deviceContext("dev-a"), "song-nope", "", "")
	assertErrorCode(t, err, ErrCodeSongNotFound)
}

func TestSubmitWithoutFingerprint(t *testing.T) {
	svc, _, _, _ := newRequestServiceFixture()
	_, err := svc.Submit(deviceContext(""), "song-1", "", "")
	assertErrorCode(t, err, ErrCodeRequiredFieldMissing)
}

func TestSubmitQuotaExceeded(t *testing.T) {
	svc, _, _, cs := newRequestServiceFixture()
	cs.conf.Restrictions.AllowDuplicateRequests = true

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
		require.NoError(t, err)
	}
	_, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	assertErrorCode(t, err, ErrCodeQuotaExceeded)
}

func TestSubmitWhitelistBypassesQuota(t *testing.T) {
	svc, _, _, cs := newRequestServiceFixture()
	cs.conf.Restrictions.AllowDuplicateRequests = true
	cs.whitelist["dev-vip"] = true

	for i := 0; i < 5; i++ {
		_, err := svc.Submit(deviceContext("dev-vip"), "song-1", "", "")
		require.NoError(t, err)
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	svc, _, _, _ := newRequestServiceFixture()
	_, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	require.NoError(t, err)
	_, err = svc.Submit(deviceContext("dev-b"), "song-1", "", "")
	assertErrorCode(t, err, ErrCodeDuplicateRequestsNotAllowed)

	// A different song is fine
	_, err = svc.Submit(deviceContext("dev-b"), "song-2", "", "")
	assert.NoError(t, err)
}

func TestSubmitDuplicateAllowedByConfig(t *testing.T) {
	svc, _, _, cs := newRequestServiceFixture()
	cs.conf.Restrictions.AllowDuplicateRequests = true
	_, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	require.NoError(t, err)
	_, err = svc.Submit(deviceContext("dev-b"), "song-1", "", "")
	assert.NoError(t, err)
}

func TestSetStatusValidation(t *testing.T) {
	svc, _, _, _ := newRequestServiceFixture()
	req, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	require.NoError(t, err)

	_, err = svc.SetStatus(deviceContext(""), req.ID, "dancing")
	assertErrorCode(t, err, ErrCodeIllegalValue)

	// "removed" is reserved for the delete operation
	_, err = svc.SetStatus(deviceContext(""), req.ID, models.RequestStatusRemoved)
	assertErrorCode(t, err, ErrCodeIllegalValue)

	_, err = svc.SetStatus(deviceContext(""), "req-nope", models.RequestStatusPlaying)
	assertErrorCode(t, err, ErrCodeRequestNotFound)

	updated, err := svc.SetStatus(deviceContext(""), req.ID, models.RequestStatusPlaying)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPlaying, updated.Status)
}

func TestRemoveUnknownRequest(t *testing.T) {
	svc, _, _, _ := newRequestServiceFixture()
	err := svc.Remove(deviceContext(""), "req-nope")
	assertErrorCode(t, err, ErrCodeRequestNotFound)
}

func TestReorderMismatch(t *testing.T) {
	svc, _, _, cs := newRequestServiceFixture()
	cs.conf.Restrictions.AllowDuplicateRequests = true
	first, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	require.NoError(t, err)
	second, err := svc.Submit(deviceContext("dev-b"), "song-1", "", "")
	require.NoError(t, err)

	_, err = svc.Reorder(deviceContext(""), []string{first.ID})
	assertErrorCode(t, err, ErrCodeReorderMismatch)

	list, err := svc.Reorder(deviceContext(""), []string{second.ID, first.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestClapCounts(t *testing.T) {
	svc, store, _, _ := newRequestServiceFixture()
	req, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
	require.NoError(t, err)

	total, err := svc.Clap(deviceContext("dev-b"), req.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), total)

	// Claps for requests that have left the queue still count globally
	total, err = svc.Clap(deviceContext("dev-b"), "req-gone")
	require.NoError(t, err)
	assert.Equal(t, uint(2), total)
	assert.Equal(t, uint(2), store.TotalClaps())
}

func TestQuotaInfo(t *testing.T) {
	svc, _, _, cs := newRequestServiceFixture()
	cs.conf.Restrictions.AllowDuplicateRequests = true

	info, err := svc.Quota(deviceContext("dev-a"))
	require.NoError(t, err)
	assert.True(t, info.CanRequest)
	assert.Equal(t, uint(0), info.RequestCount)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(deviceContext("dev-a"), "song-1", "", "")
		require.NoError(t, err)
	}
	info, err = svc.Quota(deviceContext("dev-a"))
	require.NoError(t, err)
	assert.False(t, info.CanRequest)
	assert.Equal(t, uint(3), info.RequestCount)

	// Whitelisting restores the ability to request
	cs.whitelist["dev-a"] = true
	info, err = svc.Quota(deviceContext("dev-a"))
	require.NoError(t, err)
	assert.True(t, info.CanRequest)
}
