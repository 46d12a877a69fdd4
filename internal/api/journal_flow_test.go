package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/db"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "meowiary-api-test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}

	blobs := images.NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	blobs.Start(ctx)

	handler := NewHandler(database, blobs, "test-secret", time.UTC, false, nil, nil)
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app
}

func jsonNumber(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func jsonRequest(method string, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	request := httptest.NewRequest(method, target, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	return request
}

func decodeBody(t *testing.T, response *http.Response, out any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func apiTestImage(t *testing.T) []byte {
	t.Helper()
	canvas := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for x := 0; x < 30; x++ {
		for y := 0; y < 30; y++ {
			canvas.Set(x, y, color.RGBA{R: uint8(x * 8), G: 80, B: uint8(y * 8), A: 255})
		}
	}
	buffer := bytes.Buffer{}
	if err := png.Encode(&buffer, canvas); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buffer.Bytes()
}

func multipartImageRequest(t *testing.T, target string, fieldName string, payloads ...[]byte) *http.Request {
	t.Helper()
	body := bytes.Buffer{}
	writer := multipart.NewWriter(&body)
	for index, payload := range payloads {
		part, err := writer.CreateFormFile(fieldName, "upload.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write form file %d: %v", index, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, target, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}
}

func TestDayUpsertFetchDelete(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(http.MethodPut, "/api/days/2025/4/10", fiber.Map{"notes": "checkup day"}), -1)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("upsert status = %d, want 200", response.StatusCode)
	}
	created := struct {
		Notes string `json:"notes"`
		Day   int    `json:"day"`
	}{}
	decodeBody(t, response, &created)
	if created.Notes != "checkup day" || created.Day != 10 {
		t.Fatalf("upsert response = %+v", created)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/days/2025/4/10", nil), -1)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("fetch status = %d, want 200", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/days/2025/4/11", nil), -1)
	if err != nil {
		t.Fatalf("missing-day fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing day status = %d, want 404", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/days/2025/4/10", nil), -1)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/days/2025/4/10", nil), -1)
	if err != nil {
		t.Fatalf("fetch after delete failed: %v", err)
	}
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("fetch after delete status = %d, want 404", response.StatusCode)
	}
	response.Body.Close()
}

func TestDayRejectsImpossibleDate(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/days/2025/2/30", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", response.StatusCode)
	}
	response.Body.Close()
}

func TestUploadImagesAndToggleFavorite(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(multipartImageRequest(t, "/api/days/2025/4/10/images", "images", apiTestImage(t), apiTestImage(t)), -1)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("upload status = %d, want 201", response.StatusCode)
	}
	uploaded := struct {
		Images []struct {
			ID           uint   `json:"id"`
			ThumbnailURL string `json:"thumbnail_url"`
			IsFavorite   bool   `json:"is_favorite"`
		} `json:"images"`
	}{}
	decodeBody(t, response, &uploaded)
	if len(uploaded.Images) != 2 {
		t.Fatalf("uploaded %d images, want 2", len(uploaded.Images))
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, uploaded.Images[0].ThumbnailURL, nil), -1)
	if err != nil {
		t.Fatalf("thumbnail fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("thumbnail status = %d, want 200", response.StatusCode)
	}
	data, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("served thumbnail is not a decodable image: %v", err)
	}

	favoriteTarget := "/api/images/" + jsonNumber(uploaded.Images[0].ID) + "/favorite"
	response, err = app.Test(httptest.NewRequest(http.MethodPost, favoriteTarget, nil), -1)
	if err != nil {
		t.Fatalf("favorite toggle failed: %v", err)
	}
	toggled := struct {
		IsFavorite bool `json:"is_favorite"`
	}{}
	decodeBody(t, response, &toggled)
	if !toggled.IsFavorite {
		t.Fatal("first toggle must set the favorite flag")
	}
}

func TestUploadRejectsGarbagePayload(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(multipartImageRequest(t, "/api/days/2025/4/10/images", "images", []byte("not an image")), -1)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", response.StatusCode)
	}
	response.Body.Close()
}

func TestSymptomLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.Test(jsonRequest(http.MethodPut, "/api/days/2025/4/10", fiber.Map{"notes": ""}), -1); err != nil {
		t.Fatalf("day upsert failed: %v", err)
	}

	body := bytes.Buffer{}
	writer := multipart.NewWriter(&body)
	writer.WriteField("name", "sneezing")
	writer.WriteField("severity", "3")
	writer.WriteField("notes", "since morning")
	writer.Close()
	request := httptest.NewRequest(http.MethodPost, "/api/days/2025/4/10/symptoms", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("symptom create failed: %v", err)
	}
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("symptom create status = %d, want 201", response.StatusCode)
	}
	created := struct {
		ID       uint   `json:"id"`
		Name     string `json:"name"`
		Severity int    `json:"severity"`
	}{}
	decodeBody(t, response, &created)
	if created.Name != "sneezing" || created.Severity != 3 {
		t.Fatalf("symptom create response = %+v", created)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/months/2025/4/symptom-days", nil), -1)
	if err != nil {
		t.Fatalf("symptom days fetch failed: %v", err)
	}
	symptomDays := struct {
		Days []int `json:"days"`
	}{}
	decodeBody(t, response, &symptomDays)
	if len(symptomDays.Days) != 1 || symptomDays.Days[0] != 10 {
		t.Fatalf("symptom days = %v, want [10]", symptomDays.Days)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/symptoms/"+jsonNumber(created.ID), nil), -1)
	if err != nil {
		t.Fatalf("symptom delete failed: %v", err)
	}
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("symptom delete status = %d, want 204", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/symptoms/"+jsonNumber(created.ID), nil), -1)
	if err != nil {
		t.Fatalf("second symptom delete failed: %v", err)
	}
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second symptom delete status = %d, want 404", response.StatusCode)
	}
	response.Body.Close()
}

func TestSymptomValidationOverHTTP(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.Test(jsonRequest(http.MethodPut, "/api/days/2025/4/10", fiber.Map{"notes": ""}), -1); err != nil {
		t.Fatalf("day upsert failed: %v", err)
	}

	body := bytes.Buffer{}
	writer := multipart.NewWriter(&body)
	writer.WriteField("name", "cough")
	writer.WriteField("severity", "9")
	writer.Close()
	request := httptest.NewRequest(http.MethodPost, "/api/days/2025/4/10/symptoms", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("out-of-range severity status = %d, want 400", response.StatusCode)
	}
	response.Body.Close()
}

func TestDisplayModeRandomDemotesWithoutImages(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(http.MethodPut, "/api/months/2025/4/display-mode", fiber.Map{"mode": "random_image"}), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}
	view := struct {
		Mode    string `json:"mode"`
		Demoted bool   `json:"demoted"`
	}{}
	decodeBody(t, response, &view)
	if view.Mode != "color" || !view.Demoted {
		t.Fatalf("display view = %+v, want demoted color", view)
	}
}

func TestCardColorValidation(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(http.MethodPut, "/api/months/2025/4/card-color", fiber.Map{"color": "red"}), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("invalid color status = %d, want 400", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(jsonRequest(http.MethodPut, "/api/months/2025/4/card-color", fiber.Map{"color": "#A1B2C3"}), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("valid color status = %d, want 200", response.StatusCode)
	}
	response.Body.Close()

	monthResponse, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/months/2025/4", nil), -1)
	if err != nil {
		t.Fatalf("month fetch failed: %v", err)
	}
	month := struct {
		CardColor string `json:"card_color"`
	}{}
	decodeBody(t, monthResponse, &month)
	if month.CardColor != "#A1B2C3" {
		t.Fatalf("card color = %q, want #A1B2C3", month.CardColor)
	}
}

func TestPinLockFlow(t *testing.T) {
	app := newTestApp(t)

	// Without a configured PIN everything is open.
	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/months/2025/4", nil), -1)
	if err != nil {
		t.Fatalf("open fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("open fetch status = %d, want 200", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/pin", fiber.Map{"pin": "1234"}), -1)
	if err != nil {
		t.Fatalf("set pin failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("set pin status = %d, want 200", response.StatusCode)
	}
	setCookies := response.Cookies()
	response.Body.Close()
	if len(setCookies) == 0 {
		t.Fatal("setting the PIN must issue a session cookie")
	}

	// A cookie-less request is now locked out.
	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/months/2025/4", nil), -1)
	if err != nil {
		t.Fatalf("locked fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("locked fetch status = %d, want 401", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/unlock", fiber.Map{"pin": "9999"}), -1)
	if err != nil {
		t.Fatalf("bad unlock failed: %v", err)
	}
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad unlock status = %d, want 401", response.StatusCode)
	}
	response.Body.Close()

	response, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/unlock", fiber.Map{"pin": "1234"}), -1)
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("unlock status = %d, want 200", response.StatusCode)
	}
	unlockCookies := response.Cookies()
	response.Body.Close()
	if len(unlockCookies) == 0 {
		t.Fatal("unlock must issue a session cookie")
	}

	unlocked := httptest.NewRequest(http.MethodGet, "/api/months/2025/4", nil)
	for _, cookie := range unlockCookies {
		unlocked.AddCookie(cookie)
	}
	response, err = app.Test(unlocked, -1)
	if err != nil {
		t.Fatalf("unlocked fetch failed: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("unlocked fetch status = %d, want 200", response.StatusCode)
	}
	response.Body.Close()

	statusResponse, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), -1)
	if err != nil {
		t.Fatalf("status fetch failed: %v", err)
	}
	status := struct {
		PINConfigured bool `json:"pin_configured"`
	}{}
	decodeBody(t, statusResponse, &status)
	if !status.PINConfigured {
		t.Fatal("status must report the configured PIN")
	}
}
