package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/jobhub/internal/netx"
)

// UploadLogo asks the server for a presigned URL and PUTs the file there.
func (a *App) UploadLogo(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %s\n", err.Error())
		return err
	}

	contentType := http.DetectContentType(data)

	up, err := a.api.PresignLogo(ctx, a.token, contentType)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %s\n", err.Error())
		return err
	}

	if err := netx.UploadToPresignedURL(ctx, a.uploader, up.URL, contentType, data); err != nil {
		fmt.Fprintf(a.out, "Failed: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s as %s\n", path, up.Key)
	return nil
}
