package io

import (
	"io"
	"sort"
	"testing"
	"time"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func writeBackupTestFile(t *testing.T, f Filename, content string) {
	t.Helper()
	if err := UFS.Create(f, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	}); err != nil {
		t.Fatal(err)
	}
}

func TestBackupArchive(t *testing.T) {
	root := MakeDirectory(t.TempDir())
	a := root.File("cpp", "Hello.vcxproj")
	b := root.File("csharp", "Hello.csproj")
	missing := root.File("Missing.vcxproj")
	writeBackupTestFile(t, a, "<Project>cpp</Project>")
	writeBackupTestFile(t, b, "<Project>csharp</Project>")

	dst := MakeBackupFilename(root, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))
	if dst.Basename != "icebuilder-backup-20240501-103000.zip" {
		t.Errorf("MakeBackupFilename: unexpected name %q", dst.Basename)
	}

	archived, err := CreateBackupArchive(dst, root, a, b, missing)
	if err != nil {
		t.Fatal(err)
	}
	if len(archived) != 2 {
		t.Errorf("CreateBackupArchive: expected 2 files, got %v", archived)
	}

	entries, err := ListBackupArchive(dst)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(entries)
	if len(entries) != 2 || entries[0] != "cpp/Hello.vcxproj" || entries[1] != "csharp/Hello.csproj" {
		t.Errorf("ListBackupArchive: unexpected entries %v", entries)
	}

	writeBackupTestFile(t, a, "<Project>upgraded</Project>")

	restoreDir := MakeDirectory(t.TempDir())
	restored, err := RestoreBackupArchive(dst, restoreDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) != 2 {
		t.Errorf("RestoreBackupArchive: expected 2 files, got %v", restored)
	}

	content, err := UFS.ReadAll(restoreDir.File("cpp", "Hello.vcxproj"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "<Project>cpp</Project>" {
		t.Errorf("RestoreBackupArchive: expected original content, got %q", content)
	}
}

func TestBackupArchiveOutsideOfRoot(t *testing.T) {
	root := MakeDirectory(t.TempDir())
	other := MakeDirectory(t.TempDir())
	f := other.File("Hello.vcxproj")
	writeBackupTestFile(t, f, "<Project />")

	if _, err := CreateBackupArchive(root.File("backup.zip"), root, f); err == nil {
		t.Error("CreateBackupArchive: expected an error for a file outside of root")
	}
}

func TestCommonDirectory(t *testing.T) {
	root := MakeDirectory(t.TempDir())
	common := CommonDirectory(
		root.File("a", "b", "One.vcxproj"),
		root.File("a", "Two.vcxproj"),
		root.File("a", "c", "Three.csproj"))
	if !common.Equals(root.Folder("a")) {
		t.Errorf("CommonDirectory: expected %q, got %q", root.Folder("a"), common)
	}
	if CommonDirectory().Valid() {
		t.Error("CommonDirectory: expected an invalid directory without files")
	}
}
