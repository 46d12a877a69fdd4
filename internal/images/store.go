package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	originalsDirName  = "original_images"
	thumbnailsDirName = "thumbnail_images"

	thumbnailMaxSide = 200
	jpegQuality      = 90

	deleteQueueSize = 512
)

var (
	ErrDecodeFailed = errors.New("image decode failed")
	ErrEncodeFailed = errors.New("image encode failed")
)

type Variant string

const (
	VariantOriginal  Variant = "original"
	VariantThumbnail Variant = "thumbnail"
)

// Handle references a stored (original, thumbnail) pair by logical path.
// Paths are relative to the store's base directory so records stay valid
// when the base directory moves.
type Handle struct {
	OriginalPath  string
	ThumbnailPath string
}

type deleteRequest struct {
	path    string
	variant Variant
}

// Store keeps original and thumbnail image files under two sibling
// directories, with an in-memory decode cache keyed by logical path.
// File deletion is asynchronous: requests are queued and drained by the
// worker started with Start, and failures are logged, never surfaced,
// because the owning database record is already gone by then.
type Store struct {
	baseDir string

	cacheMu sync.RWMutex
	cache   map[string]image.Image

	deleteQueue chan deleteRequest
	pending     sync.WaitGroup
}

func NewStore(baseDir string) *Store {
	return &Store{
		baseDir:     baseDir,
		cache:       make(map[string]image.Image),
		deleteQueue: make(chan deleteRequest, deleteQueueSize),
	}
}

// Start launches the background deletion worker. It stops when ctx is
// cancelled; queued requests left behind at shutdown are abandoned, the
// authoritative state has already dropped their references.
func (store *Store) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case request := <-store.deleteQueue:
				store.processDelete(request)
			}
		}
	}()
}

// Save normalizes the raw bytes by decoding and re-encoding, writes the
// original and an aspect-preserving thumbnail under the same UUID-derived
// name, and returns a Handle only when both files are on disk. JPEG is
// tried first, PNG second; Save fails only when both encodings fail.
func (store *Store) Save(data []byte) (Handle, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Handle{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return store.savePair(decoded, uuid.New().String())
}

// SaveFeatureImage stores the per-month custom feature image under its
// deterministic name, replacing any previous one.
func (store *Store) SaveFeatureImage(year int, month int, data []byte) (Handle, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Handle{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	name := fmt.Sprintf("feature_%d_%d", year, month)
	handle, err := store.savePair(decoded, name)
	if err != nil {
		return Handle{}, err
	}

	// A previous feature image may live under the other extension.
	for _, extension := range []string{".jpg", ".png"} {
		stale := filepath.Join(originalsDirName, name+extension)
		if stale != handle.OriginalPath {
			store.removeFile(stale)
			store.InvalidatePath(stale)
		}
		staleThumb := filepath.Join(thumbnailsDirName, name+extension)
		if staleThumb != handle.ThumbnailPath {
			store.removeFile(staleThumb)
			store.InvalidatePath(staleThumb)
		}
	}
	store.InvalidatePath(handle.OriginalPath)
	store.InvalidatePath(handle.ThumbnailPath)

	return handle, nil
}

func (store *Store) savePair(decoded image.Image, name string) (Handle, error) {
	encodedOriginal, extension, err := encodeWithFallback(decoded)
	if err != nil {
		return Handle{}, err
	}
	encodedThumbnail, _, err := encodeWithFallback(scaleToFit(decoded, thumbnailMaxSide))
	if err != nil {
		return Handle{}, err
	}

	if err := os.MkdirAll(filepath.Join(store.baseDir, originalsDirName), 0o755); err != nil {
		return Handle{}, fmt.Errorf("create originals directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(store.baseDir, thumbnailsDirName), 0o755); err != nil {
		return Handle{}, fmt.Errorf("create thumbnails directory: %w", err)
	}

	handle := Handle{
		OriginalPath:  filepath.Join(originalsDirName, name+extension),
		ThumbnailPath: filepath.Join(thumbnailsDirName, name+extension),
	}

	if err := os.WriteFile(store.AbsolutePath(handle.OriginalPath), encodedOriginal, 0o644); err != nil {
		return Handle{}, fmt.Errorf("write original: %w", err)
	}
	if err := os.WriteFile(store.AbsolutePath(handle.ThumbnailPath), encodedThumbnail, 0o644); err != nil {
		// Never leave a half-written pair behind a returned handle.
		store.removeFile(handle.OriginalPath)
		return Handle{}, fmt.Errorf("write thumbnail: %w", err)
	}

	return handle, nil
}

// LoadOriginal returns the decoded original for the logical path, or
// found=false when the file is absent. A missing file is an expected state
// (already-deleted attachment), not an error.
func (store *Store) LoadOriginal(path string) (image.Image, bool, error) {
	return store.load(path)
}

func (store *Store) LoadThumbnail(path string) (image.Image, bool, error) {
	return store.load(path)
}

func (store *Store) load(path string) (image.Image, bool, error) {
	store.cacheMu.RLock()
	cached, hit := store.cache[path]
	store.cacheMu.RUnlock()
	if hit {
		return cached, true, nil
	}

	data, err := os.ReadFile(store.AbsolutePath(path))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read image %s: %w", path, err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}

	store.cacheMu.Lock()
	store.cache[path] = decoded
	store.cacheMu.Unlock()

	return decoded, true, nil
}

// Delete queues background removal of the file behind the logical path.
// It never reports failure to the caller: by the time deletion is
// requested the owning record is assumed already gone.
func (store *Store) Delete(path string, variant Variant) {
	if path == "" {
		return
	}
	store.pending.Add(1)
	store.deleteQueue <- deleteRequest{path: path, variant: variant}
}

// Flush blocks until every queued deletion has been processed.
func (store *Store) Flush() {
	store.pending.Wait()
}

func (store *Store) processDelete(request deleteRequest) {
	defer store.pending.Done()
	if err := os.Remove(store.AbsolutePath(request.path)); err != nil && !os.IsNotExist(err) {
		log.Printf("delete %s image %s failed: %v", request.variant, request.path, err)
	}
	store.InvalidatePath(request.path)
}

func (store *Store) InvalidatePath(path string) {
	store.cacheMu.Lock()
	delete(store.cache, path)
	store.cacheMu.Unlock()
}

func (store *Store) InvalidateAll() {
	store.cacheMu.Lock()
	store.cache = make(map[string]image.Image)
	store.cacheMu.Unlock()
}

func (store *Store) FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(store.AbsolutePath(path))
	return err == nil && !info.IsDir()
}

func (store *Store) AbsolutePath(path string) string {
	return filepath.Join(store.baseDir, path)
}

func (store *Store) removeFile(path string) {
	if err := os.Remove(store.AbsolutePath(path)); err != nil && !os.IsNotExist(err) {
		log.Printf("remove %s failed: %v", path, err)
	}
}

func encodeWithFallback(decoded image.Image) ([]byte, string, error) {
	jpegBuffer := bytes.Buffer{}
	if err := jpeg.Encode(&jpegBuffer, decoded, &jpeg.Options{Quality: jpegQuality}); err == nil {
		return jpegBuffer.Bytes(), ".jpg", nil
	}

	pngBuffer := bytes.Buffer{}
	if err := png.Encode(&pngBuffer, decoded); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return pngBuffer.Bytes(), ".png", nil
}

func scaleToFit(source image.Image, maxSide int) image.Image {
	bounds := source.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxSide && height <= maxSide {
		return source
	}

	scaledWidth := maxSide
	scaledHeight := maxSide
	if width > height {
		scaledHeight = height * maxSide / width
	} else {
		scaledWidth = width * maxSide / height
	}
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	if scaledHeight < 1 {
		scaledHeight = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), source, bounds, draw.Over, nil)
	return scaled
}
