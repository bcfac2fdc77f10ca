package echoapi

import (
	"bufio"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/user"
)

type fileApi struct {
	files   core.FileStorage
	maxSize int64
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := fileApi{files: opts.Files, maxSize: opts.Conf.Storage.MaxUploadSize}

	fg := g.Group("/files", jwt, staffMiddleware(user.StaffRoles...))
	fg.POST("", api.upload)
	fg.GET("/:id", api.download)
	fg.DELETE("/:id", api.destroy)
}

func (api *fileApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file is required"})
	}
	if api.maxSize > 0 && fh.Size > api.maxSize {
		return core.NewValidationError(nil, core.FieldError{
			Field: "file",
			Error: "file must not exceed " + strconv.FormatInt(api.maxSize, 10) + " bytes",
		})
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	// sniff the content type instead of trusting the client's
	br := bufio.NewReaderSize(src, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return errors.Wrap(err, "reading uploaded file")
	}
	contentType := http.DetectContentType(head)
	if _, ok := core.AllowedUploadTypes[contentType]; !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "unsupported file type " + contentType})
	}

	f, err := api.files.Save(ctx.Request().Context(), core.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	}, br)
	if err != nil {
		return errors.Wrap(err, "saving file")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *fileApi) download(ctx echo.Context) error {
	f, rc, err := api.files.Open(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer rc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, "inline; filename*=UTF-8''"+url.PathEscape(f.Name))
	return ctx.Stream(http.StatusOK, f.ContentType, rc)
}

func (api *fileApi) destroy(ctx echo.Context) error {
	if err := api.files.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}
