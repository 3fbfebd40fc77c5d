package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/catalog"
)

const (
	maxImageSize   = 5 << 20
	menuImageDir   = "uploads/menu"
	imageFormField = "image"
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ImageStore keeps uploaded menu images on local disk under Root. Stored
// paths are served as "/uploads/...".
type ImageStore struct {
	Root string
}

func (s ImageStore) Save(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	dir := filepath.Join(s.Root, filepath.FromSlash(menuImageDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] failed to create directory %s: %v", dir, err)
		return "", err
	}

	filename := uuid.NewString() + extension
	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] failed to save file %s: %v", fullPath, err)
		return "", err
	}

	return "/" + path.Join(menuImageDir, filename), nil
}

// Delete removes a previously saved upload. Anything outside the uploads
// directory is refused; external image URLs are ignored.
func (s ImageStore) Delete(stored string) error {
	trimmed := strings.TrimSpace(stored)
	if trimmed == "" || strings.Contains(trimmed, "://") {
		return nil
	}

	cleanRel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(trimmed, "/")), "/")
	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", stored)
	}

	cleanBase := filepath.Clean(s.Root)
	target := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if !strings.HasPrefix(target, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", stored)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// UploadMenuItemImage replaces a menu item's image with a multipart upload.
func UploadMenuItemImage(editor catalog.Editor, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menu/:id/image"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		file, err := c.FormFile(imageFormField)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "image required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		existing, err := editor.FindByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		stored, err := images.Save(file)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		updated, err := editor.Update(ctx, id, map[string]any{"imageUrl": stored}, nil)
		if err != nil {
			if delErr := images.Delete(stored); delErr != nil {
				log.Printf("[%s] cleanup failed: %v", route, delErr)
			}
			if errors.Is(err, catalog.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, err.Error())
				return
			}
			log.Printf("[%s] update failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if old := strings.TrimSpace(existing.ImageURL); old != "" && old != stored {
			if err := images.Delete(old); err != nil {
				log.Printf("[%s] old image delete failed: %v", route, err)
			}
		}

		c.JSON(http.StatusOK, updated)
	}
}
