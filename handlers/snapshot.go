package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/satheeshds/orderledger/importer"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/snapshot"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUpload bounds snapshot uploads.
const maxUpload = 32 << 20

type importResponse struct {
	Import    importer.Result     `json:"import"`
	RowIssues []snapshot.RowIssue `json:"rowIssues"`
}

// DownloadSnapshot exports the ledger as a workbook
// @Summary      Download snapshot
// @Description  Export products, customers, orders and payments as an xlsx workbook.
// @Tags         snapshot
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      500  {object}  Response{error=string}
// @Router       /snapshot [get]
// @Security     BasicAuth
func DownloadSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := Ledger.Export(r.Context(), accountOf(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := snapshot.WriteXLSX(&buf, s); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.xlsx"`, models.Today()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("writing snapshot", "error", err)
	}
}

// UploadSnapshot imports a workbook
// @Summary      Upload snapshot
// @Description  Import an xlsx workbook. Records that already exist are skipped, so the same
// @Description  workbook can be uploaded twice. Accepts a multipart "file" field or a raw body.
// @Tags         snapshot
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook"
// @Success      200   {object}  Response{data=importResponse}
// @Failure      400   {object}  Response{error=string}
// @Router       /snapshot [post]
// @Security     BasicAuth
func UploadSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	var body io.Reader = r.Body
	if err := r.ParseMultipartForm(maxUpload); err == nil {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer f.Close()
		body = f
	}

	s, issues, err := snapshot.ReadXLSX(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := Ledger.Import(r.Context(), accountOf(r), s)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if issues == nil {
		issues = []snapshot.RowIssue{}
	}
	writeJSON(w, http.StatusOK, importResponse{Import: res, RowIssues: issues})
}
