package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/httpjson"
	"neighborhood/backend/internal/middleware"
	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

const (
	// MaxUploadBytes caps a single attachment.
	MaxUploadBytes = 20 << 20

	uploadPrefix  = "attachments"
	signedURLTTL  = 15 * time.Minute
	maxNameLength = 80
)

// UploadScopes are the features that accept attachments.
var UploadScopes = []string{"notices", "meetings", "inquiries", "chat", "dm"}

type Uploads struct {
	cfg     config.Config
	storage *storage.Client
	iam     *credentials.IamCredentialsClient
}

func NewUploads(cfg config.Config, st *storage.Client) *Uploads {
	// IAM client is optional; only needed for signed URLs.
	iamClient, err := credentials.NewIamCredentialsClient(context.Background())
	if err != nil {
		log.Printf("[uploads] iam credentials client unavailable: %v", err)
		iamClient = nil
	}
	return &Uploads{cfg: cfg, storage: st, iam: iamClient}
}

type signReq struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Scope       string `json:"scope"`
}

type signResp struct {
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	ObjectPath string            `json:"objectPath"`
	ExpiresAt  int64             `json:"expiresAt"`
}

func (in *signReq) clean() error {
	in.FileName = strings.TrimSpace(in.FileName)
	in.Scope = strings.TrimSpace(in.Scope)
	in.ContentType = strings.TrimSpace(in.ContentType)
	if in.FileName == "" {
		return fmt.Errorf("fileName is required")
	}
	if !utils.ContainsString(UploadScopes, in.Scope) {
		return fmt.Errorf("scope must be one of %s", strings.Join(UploadScopes, ", "))
	}
	if in.Size <= 0 || in.Size > MaxUploadBytes {
		return fmt.Errorf("size must be between 1 and %d bytes", MaxUploadBytes)
	}
	if in.ContentType == "" {
		in.ContentType = mime.TypeByExtension(strings.ToLower(path.Ext(in.FileName)))
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}
	return nil
}

// SafeName keeps letters (any script), digits, dot, dash and underscore so
// the object path never needs escaping tricks; everything else becomes '_'.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	out = utils.TrimMax(out, maxNameLength)
	if out == "" {
		return "file"
	}
	return out
}

// ObjectPath is attachments/{scope}/{uid}/{id}-{safeName}.
func ObjectPath(scope, uid, id, fileName string) string {
	return strings.Join([]string{uploadPrefix, scope, uid, id + "-" + SafeName(fileName)}, "/")
}

// ownedScope reports the scope of objectPath when it belongs to uid.
func ownedScope(objectPath, uid string) (string, bool) {
	parts := strings.Split(objectPath, "/")
	if len(parts) != 4 || parts[0] != uploadPrefix || parts[2] != uid || parts[3] == "" {
		return "", false
	}
	if !utils.ContainsString(UploadScopes, parts[1]) {
		return "", false
	}
	return parts[1], true
}

// DownloadURL is the Firebase Storage download link guarded by token.
func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), url.QueryEscape(token))
}

// Sign issues a V4 signed PUT URL for a new attachment object.
func (h *Uploads) Sign(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	var req signReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.clean(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	objectPath := ObjectPath(req.Scope, au.UID, uuid.NewString(), req.FileName)
	signed, exp, err := h.signedURL(r.Context(), objectPath, req.ContentType)
	if err != nil {
		log.Printf("[uploads] sign %s: %v", objectPath, err)
		httpjson.Error(w, http.StatusServiceUnavailable, "uploads are not available")
		return
	}
	httpjson.Write(w, http.StatusOK, signResp{
		URL:        signed,
		Method:     http.MethodPut,
		Headers:    map[string]string{"Content-Type": req.ContentType},
		ObjectPath: objectPath,
		ExpiresAt:  exp.Unix(),
	})
}

type confirmReq struct {
	ObjectPath   string `json:"objectPath"`
	OriginalName string `json:"originalName"`
}

// Confirm checks the uploaded object and returns the attachment record the
// client stores on its post or message.
func (h *Uploads) Confirm(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	var req confirmReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.ObjectPath = strings.TrimSpace(req.ObjectPath)
	if _, ok := ownedScope(req.ObjectPath, au.UID); !ok {
		httpjson.Error(w, http.StatusForbidden, "not your upload")
		return
	}
	if h.storage == nil || h.cfg.StorageBucket == "" {
		httpjson.Error(w, http.StatusServiceUnavailable, "uploads are not available")
		return
	}

	obj := h.storage.Bucket(h.cfg.StorageBucket).Object(req.ObjectPath)
	attrs, err := obj.Attrs(r.Context())
	if errors.Is(err, storage.ErrObjectNotExist) {
		httpjson.Error(w, http.StatusNotFound, "object not found")
		return
	}
	if err != nil {
		log.Printf("[uploads] attrs %s: %v", req.ObjectPath, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to read object")
		return
	}
	if attrs.Size > MaxUploadBytes {
		if err := obj.Delete(r.Context()); err != nil {
			log.Printf("[uploads] delete oversized %s: %v", req.ObjectPath, err)
		}
		httpjson.Error(w, http.StatusBadRequest, "file is too large")
		return
	}

	token := attrs.Metadata["firebaseStorageDownloadTokens"]
	if token == "" {
		token = uuid.NewString()
		_, err := obj.Update(r.Context(), storage.ObjectAttrsToUpdate{
			Metadata: map[string]string{"firebaseStorageDownloadTokens": token},
		})
		if err != nil {
			log.Printf("[uploads] set download token %s: %v", req.ObjectPath, err)
			httpjson.Error(w, http.StatusInternalServerError, "failed to finalize upload")
			return
		}
	}

	name := strings.TrimSpace(req.OriginalName)
	if name == "" {
		name = path.Base(req.ObjectPath)
	}
	httpjson.Write(w, http.StatusOK, models.Attachment{
		URL:          DownloadURL(h.cfg.StorageBucket, req.ObjectPath, token),
		OriginalName: name,
		Type:         attrs.ContentType,
		Size:         attrs.Size,
	})
}

func (h *Uploads) signedURL(ctx context.Context, objectPath, contentType string) (string, time.Time, error) {
	if h.cfg.StorageBucket == "" {
		return "", time.Time{}, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if h.cfg.SignedURLServiceAccountEmail == "" {
		return "", time.Time{}, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if h.iam == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	exp := time.Now().Add(signedURLTTL)

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodPut,
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: h.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", h.cfg.SignedURLServiceAccountEmail)
			resp, err := h.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	signed, err := storage.SignedURL(h.cfg.StorageBucket, objectPath, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return signed, exp, nil
}
