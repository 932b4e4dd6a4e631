package install

import (
	"os"

	"github.com/h2non/filetype"

	"github.com/wenget/wenget/internal/platform"
)

// DetectFormat determines an asset's Extension, preferring the filename
// but falling back to magic-byte sniffing when the name is ambiguous
// (Unknown) — §4.4 step 2. DetectFormat does not consult
// platform.Rejected: release-asset callers filter rejected names before
// downloading, and for other inputs an `.msi` comes back as Msi, which
// Extract then refuses as an unsupported format.
func DetectFormat(assetName, downloadedPath string) (platform.Extension, error) {
	parsed := platform.Parse(assetName)
	if parsed.Extension != platform.Unknown {
		return parsed.Extension, nil
	}

	f, err := os.Open(downloadedPath)
	if err != nil {
		return platform.Unknown, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return platform.Unknown, err
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		// Genuinely ambiguous: no extension, no recognizable magic bytes.
		// Treat as an uncompressed binary, matching §4.4's "asset that is
		// itself the executable" branch.
		return platform.UncompressedBinary, nil
	}

	switch kind.Extension {
	case "zip":
		return platform.Zip, nil
	case "gz":
		return platform.TarGz, nil
	case "xz":
		return platform.TarXz, nil
	case "bz2":
		return platform.TarBz2, nil
	case "7z":
		return platform.SevenZ, nil
	case "exe":
		return platform.Exe, nil
	default:
		return platform.UncompressedBinary, nil
	}
}
