package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"listing-service/internal/credential"
	"listing-service/internal/domain"
	"listing-service/internal/repository"
	"listing-service/internal/repository/sqlite"
	"listing-service/internal/storage"
)

// fakeUploader records uploads in memory and fails the n-th upload when failOn is set.
type fakeUploader struct {
	mu        sync.Mutex
	uploads   []string
	folders   map[string][]string
	deleted   []string
	failOn    int
	deleteErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{folders: make(map[string][]string)}
}

func (f *fakeUploader) UploadOne(ctx context.Context, img storage.Image, folder string) (domain.ImageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != 0 && len(f.uploads)+1 == f.failOn {
		f.uploads = append(f.uploads, "failed")
		return domain.ImageRef{}, fmt.Errorf("%w: network down", domain.ErrUpload)
	}
	body, _ := io.ReadAll(img.Body)
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("img-%d", len(f.uploads))
	}
	key := folder + "/" + name
	f.uploads = append(f.uploads, key)
	f.folders[folder] = append(f.folders[folder], key)
	return domain.ImageRef{SecureURL: "https://cdn/" + key + "?" + string(body), Key: key, Folder: folder}, nil
}

func (f *fakeUploader) UploadMany(ctx context.Context, images []storage.Image, folder string, each func(domain.ImageRef) error) ([]domain.ImageRef, error) {
	var refs []domain.ImageRef
	for _, img := range images {
		ref, err := f.UploadOne(ctx, img, folder)
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
		if each != nil {
			if err := each(ref); err != nil {
				return refs, err
			}
		}
	}
	return refs, nil
}

func (f *fakeUploader) DeleteFolder(ctx context.Context, folder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, folder)
	delete(f.folders, folder)
	return nil
}

// countingOffers counts the writes reaching the store and fails the
// update numbered failUpdate when it is set.
type countingOffers struct {
	repository.OfferRepository
	updates    int
	failUpdate int
}

func (c *countingOffers) Update(ctx context.Context, offer *domain.Offer) error {
	c.updates++
	if c.failUpdate != 0 && c.updates == c.failUpdate {
		return fmt.Errorf("%w: disk full", domain.ErrStore)
	}
	return c.OfferRepository.Update(ctx, offer)
}

type fixture struct {
	users    UserService
	offers   OfferService
	userRepo repository.UserRepository
	offerRep *countingOffers
	uploader *fakeUploader
	logs     *test.Hook
}

func newFixture(t *testing.T, enforceOwnership bool) *fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	offerRepo := sqlite.NewOfferRepository(db)
	require.NoError(t, sqlite.InitAll(context.Background(), userRepo, offerRepo))

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	uploader := newFakeUploader()
	counting := &countingOffers{OfferRepository: offerRepo}
	return &fixture{
		users: NewUserService(userRepo, credential.New(), uploader, UserServiceConfig{
			Namespace: "vinted",
			Logger:    logger,
		}),
		offers: NewOfferService(counting, uploader, OfferServiceConfig{
			Namespace:        "vinted",
			EnforceOwnership: enforceOwnership,
			Logger:           logger,
		}),
		userRepo: userRepo,
		offerRep: counting,
		uploader: uploader,
		logs:     hook,
	}
}

func (f *fixture) signup(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), SignupInput{Email: email, Password: "p", Username: "u"})
	require.NoError(t, err)
	return u
}

func img(body string) storage.Image {
	return storage.Image{Filename: body + ".jpg", ContentType: "image/jpeg", Body: strings.NewReader(body)}
}

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")
