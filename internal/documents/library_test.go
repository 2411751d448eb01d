package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestValidateName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "../etc", "a/b", `a\b`, ".hidden"} {
		if err := ValidateName(bad); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("ValidateName(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
	for _, good := range []string{"siemens", "PS100 datasheet.pdf", "KNX-1234.v2.txt"} {
		if err := ValidateName(good); err != nil {
			t.Fatalf("ValidateName(%q): unexpected error %v", good, err)
		}
	}
}

func TestListAndVendors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "acme", "b.txt"), []byte("b"))
	writeFile(t, filepath.Join(root, "acme", "a.md"), []byte("a"))
	writeFile(t, filepath.Join(root, "acme", "image.png"), []byte("x"))
	writeFile(t, filepath.Join(root, "acme", ".upload-123"), []byte("x"))
	writeFile(t, filepath.Join(root, "zeta", "c.txt"), []byte("c"))

	lib := NewLibrary(root, 0)

	names, err := lib.List("acme")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"a.md", "b.txt"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %q, got %q", want, names)
	}

	vendors, err := lib.Vendors()
	if err != nil {
		t.Fatalf("Vendors: %v", err)
	}
	if want := []string{"acme", "zeta"}; !reflect.DeepEqual(vendors, want) {
		t.Fatalf("expected %q, got %q", want, vendors)
	}

	if _, err := lib.List("missing"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestDocumentsExtractsEveryFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "acme", "sensor.txt"), []byte("temperature sensor"))
	writeFile(t, filepath.Join(root, "acme", "page.html"),
		[]byte(`<html><head><style>.x{}</style></head><body><h1>Valve</h1><script>var a;</script><p>DN50 flange</p></body></html>`))

	lib := NewLibrary(root, 0)
	docs, err := lib.Documents(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "page.html" || !strings.Contains(docs[0].Text, "DN50 flange") {
		t.Fatalf("unexpected html extraction: %+v", docs[0])
	}
	if strings.Contains(docs[0].Text, "var a") {
		t.Fatalf("script content leaked into text: %q", docs[0].Text)
	}
	if docs[1].Text != "temperature sensor" {
		t.Fatalf("expected plain text, got %q", docs[1].Text)
	}
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	_, _ = w.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Drift og vedlikehold</w:t></w:r></w:p>
<w:p><w:r><w:t>Filter</w:t></w:r><w:r><w:tab/><w:t>byttes hver 6. måned</w:t></w:r></w:p>
</w:body>
</w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	text, err := Extract(context.Background(), "manual.docx", buf.Bytes())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Drift og vedlikehold\nFilter\tbyttes hver 6. måned"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "Komponent")
	_ = f.SetCellValue("Sheet1", "B1", "Intervall")
	_ = f.SetCellValue("Sheet1", "A2", "PS100")
	_ = f.SetCellValue("Sheet1", "B2", "12 mnd")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	text, err := Extract(context.Background(), "vedlikehold.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "PS100\t12 mnd") || !strings.HasPrefix(text, "# Sheet1") {
		t.Fatalf("unexpected xlsx text: %q", text)
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract(context.Background(), "photo.jpg", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	lib := NewLibrary(root, 16)

	info, err := lib.Save("acme", "PS100.txt", strings.NewReader("pressure sensor"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.Size != int64(len("pressure sensor")) {
		t.Fatalf("unexpected size %d", info.Size)
	}
	names, _ := lib.List("acme")
	if !reflect.DeepEqual(names, []string{"PS100.txt"}) {
		t.Fatalf("expected saved file to be listed, got %q", names)
	}

	if _, err := lib.Save("acme", "big.txt", strings.NewReader(strings.Repeat("x", 17))); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, err := lib.Save("acme", "../escape.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := lib.Save("acme", "photo.jpg", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	names, _ = lib.List("acme")
	if len(names) != 1 {
		t.Fatalf("rejected uploads must not leave files behind, got %q", names)
	}
}
