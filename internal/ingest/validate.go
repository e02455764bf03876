package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
)

// FileInfo describes a validated input document.
type FileInfo struct {
	Path    string
	Ext     string
	Size    int64
	HashHex string
}

// AllowedExt checks if a file extension is in the allowed set. The input
// may carry a leading dot or uppercase letters.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(constants.NormalizeExt(ext))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// CheckFile validates path as an order document: it must exist, carry an
// allowed extension and stay under the upload size cap. The content hash
// is returned so callers can deduplicate reprocessing.
func CheckFile(path string) (FileInfo, error) {
	var out FileInfo

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, common.NewAppError("INVALID_PATH", "failed to resolve path", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("unsupported or missing extension: %q", ext), common.ErrInvalidInput)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return out, common.NewAppError("FILE_STAT", "failed to stat file", err)
	}
	if st.IsDir() {
		return out, common.NewAppError("INVALID_PATH", "path is a directory", common.ErrInvalidInput)
	}
	if st.Size() > constants.MaxUploadBytes {
		return out, common.NewAppError("FILE_TOO_LARGE",
			fmt.Sprintf("file size %d exceeds limit of %d bytes", st.Size(), constants.MaxUploadBytes),
			common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, common.NewAppError("FILE_OPEN", "failed to open file", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, common.NewAppError("FILE_HASH", "failed to hash file", err)
	}

	out = FileInfo{
		Path:    abs,
		Ext:     ext,
		Size:    st.Size(),
		HashHex: hex.EncodeToString(h.Sum(nil)),
	}
	return out, nil
}
