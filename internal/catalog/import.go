package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ImportResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ImportSheet creates one row per spreadsheet line of the first sheet.
// Column A is the name, B the optional description. A header row whose
// first cell reads "name" is skipped, as are names that already exist.
func ImportSheet[T any, P entry[T]](ctx context.Context, k Kind, actor access.Identity, r io.Reader) (*ImportResult, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("spreadsheet could not be read: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation("sheet %q could not be read: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, apperr.Validation("spreadsheet is empty")
	}

	start := 0
	if len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "name") {
		start = 1
	}

	res := &ImportResult{Created: []string{}, Skipped: []string{}, Errors: []string{}}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		in := CreateInput{Name: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			in.Description = strings.TrimSpace(row[1])
		}

		if _, err := Create[T, P](ctx, k, actor, in); err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindConflict:
				res.Skipped = append(res.Skipped, in.Name)
			case apperr.KindValidation:
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			default:
				return res, err
			}
			continue
		}
		res.Created = append(res.Created, in.Name)
	}

	logger.L().Info("catalog import finished",
		zap.String("kind", k.Slug),
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// POST /api/menus/<kind>/import  (multipart field "file")
func importHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "an .xlsx file is required in field \"file\"")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.Validation("only .xlsx files are supported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file could not be opened")
		}
		defer file.Close()

		res, err := ImportSheet[T, P](c.UserContext(), k, auth.IdentityFrom(c), file)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
