package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/djherbis/times"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

var LogUFS = base.NewLogCategory("UFS")

/***************************************
 * Path to string
 ***************************************/

const OSPathSeparator = os.PathSeparator

func JoinPath(in string, args ...string) string {
	sb := strings.Builder{}
	capacity := len(in)
	for _, it := range args {
		capacity += len(it) + 1
	}
	sb.Grow(capacity)
	sb.WriteString(in)
	for _, it := range args {
		if len(it) == 0 {
			continue
		}
		sb.WriteRune(OSPathSeparator)
		sb.WriteString(it)
	}
	return sb.String()
}

// ToOSPath converts a project path, which can use '\' on any host, to the host convention.
func ToOSPath(in string) string {
	if OSPathSeparator == '\\' {
		return strings.ReplaceAll(in, "/", "\\")
	}
	return strings.ReplaceAll(in, "\\", "/")
}

func lastIndexOfPathSeparator(in string) (int, bool) {
	n := (len(in) - 1)
	for i := range in {
		i = n - i
		if os.IsPathSeparator(in[i]) {
			return i, true
		}
	}
	return len(in), false
}

/***************************************
 * Directory
 ***************************************/

type Directory struct {
	Path string
}

func MakeDirectory(str string) Directory {
	return Directory{Path: CleanPath(str)}
}
func (d Directory) Len() int    { return len(d.Path) }
func (d Directory) Valid() bool { return len(d.Path) > 0 }
func (d Directory) Basename() string {
	if i, ok := lastIndexOfPathSeparator(d.Path); ok {
		return d.Path[i+1:]
	} else {
		return d.Path
	}
}
func (d Directory) Parent() Directory {
	return Directory{Path: filepath.Dir(d.Path)}
}
func (d Directory) Folder(name ...string) Directory {
	return Directory{Path: JoinPath(d.Path, name...)}
}
func (d Directory) File(name ...string) Filename {
	return Filename{
		Dirname:  d.Folder(name[:len(name)-1]...),
		Basename: name[len(name)-1]}
}
func (d Directory) IsIn(o Directory) bool {
	return o.IsParentOf(d)
}
func (d Directory) IsParentOf(o Directory) bool {
	if len(d.Path) > len(o.Path) {
		return false
	}
	if d.Path != o.Path[:len(d.Path)] {
		return false
	}
	return len(d.Path) == len(o.Path) ||
		os.IsPathSeparator(d.Path[len(d.Path)-1]) ||
		os.IsPathSeparator(o.Path[len(d.Path)])
}

// AbsoluteFolder resolves a relative path against d, an absolute path is kept as is.
func (d Directory) AbsoluteFolder(rel ...string) Directory {
	if len(rel) > 0 && filepath.IsAbs(ToOSPath(rel[0])) {
		return MakeDirectory(ToOSPath(JoinPath(rel[0], rel[1:]...)))
	}
	return MakeDirectory(ToOSPath(JoinPath(d.Path, rel...)))
}
func (d Directory) AbsoluteFile(rel ...string) Filename {
	return MakeFilename(d.AbsoluteFolder(rel...).Path)
}
func (d Directory) Relative(to Directory) string {
	if path, err := filepath.Rel(to.Path, d.Path); err == nil {
		return path
	} else {
		return d.Path
	}
}
func (d Directory) Equals(o Directory) bool {
	return d == o
}
func (d Directory) Compare(o Directory) int {
	return strings.Compare(d.Path, o.Path)
}
func (d Directory) String() string {
	return d.Path
}

/***************************************
 * Filename
 ***************************************/

type Filename struct {
	Dirname  Directory
	Basename string
}

func MakeFilename(str string) Filename {
	str = CleanPath(str)
	dirname, basename := filepath.Split(str)
	if len(dirname) > 1 {
		// trim ending path separator
		dirname = dirname[:len(dirname)-1]
	}
	return Filename{
		Basename: basename,
		Dirname:  Directory{Path: dirname},
	}
}

func (f Filename) Valid() bool { return len(f.Basename) > 0 }
func (f Filename) Ext() string {
	return path.Ext(f.Basename)
}
func (f Filename) TrimExt() string {
	return strings.TrimSuffix(f.Basename, f.Ext())
}
func (f Filename) IsIn(o Directory) bool {
	return o.IsParentOf(f.Dirname)
}
func (f Filename) ReplaceExt(ext string) Filename {
	return Filename{
		Basename: f.TrimExt() + ext,
		Dirname:  f.Dirname,
	}
}
func (f Filename) Relative(to Directory) string {
	if path, err := filepath.Rel(to.Path, f.Dirname.Path); err == nil {
		return filepath.Join(path, f.Basename)
	} else {
		return f.String()
	}
}
func (f Filename) Equals(o Filename) bool {
	return (f.Basename == o.Basename && f.Dirname.Equals(o.Dirname))
}
func (f Filename) Compare(o Filename) int {
	if c := f.Dirname.Compare(o.Dirname); c != 0 {
		return c
	} else {
		return strings.Compare(f.Basename, o.Basename)
	}
}
func (f Filename) String() string {
	if len(f.Dirname.Path) > 0 {
		return filepath.Join(f.Dirname.Path, f.Basename)
	} else {
		return f.Basename
	}
}

/***************************************
 * flag.Value interface
 ***************************************/

func (d *Directory) Set(str string) error {
	if str != "" {
		if !filepath.IsAbs(str) {
			str = filepath.Join(UFS.Root.String(), str)
		}
		*d = MakeDirectory(str)
	} else {
		*d = Directory{}
	}
	return nil
}
func (d *Directory) Type() string { return "Directory" }

func (f *Filename) Set(str string) error {
	if str != "" {
		if !filepath.IsAbs(str) {
			str = filepath.Join(UFS.Root.String(), str)
		}
		*f = MakeFilename(str)
	} else {
		*f = Filename{}
	}
	return nil
}
func (f *Filename) Type() string { return "Filename" }

/***************************************
 * JSON: marshal as string instead of struct
 ***************************************/

func (x Filename) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *Filename) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}
func (x Directory) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *Directory) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}

/***************************************
 * IO
 ***************************************/

func (f Filename) Info() (os.FileInfo, error) {
	return os.Stat(f.String())
}
func (f Filename) Exists() bool {
	info, err := f.Info()
	return err == nil && !info.IsDir()
}
func (d Directory) Exists() bool {
	info, err := os.Stat(d.Path)
	return err == nil && info.IsDir()
}

func (d Directory) MatchFilesRec(each func(Filename) error, r *regexp.Regexp) error {
	return filepath.WalkDir(d.Path, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.Path && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if r == nil || r.MatchString(entry.Name()) {
			return each(MakeFilename(path))
		}
		return nil
	})
}

func GetModificationTime(f Filename) (time.Time, error) {
	if stat, err := times.Stat(f.String()); err == nil {
		return stat.ModTime(), nil
	} else {
		return time.Time{}, err
	}
}

/***************************************
 * FileSet
 ***************************************/

type FileSet []Filename

func NewFileSet(x ...Filename) (result FileSet) {
	result = make(FileSet, 0, len(x))
	result.AppendUniq(x...)
	return
}

func (list FileSet) Len() int           { return len(list) }
func (list FileSet) At(i int) Filename  { return list[i] }
func (list FileSet) Slice() []Filename  { return list }
func (list FileSet) Less(i, j int) bool { return list[i].Compare(list[j]) < 0 }
func (list FileSet) Swap(i, j int)      { list[i], list[j] = list[j], list[i] }

func (list *FileSet) Sort() {
	sort.Sort(*list)
}
func (list FileSet) Contains(it ...Filename) bool {
	for _, x := range it {
		if _, ok := base.IndexIf(x.Equals, list...); !ok {
			return false
		}
	}
	return true
}
func (list *FileSet) Append(it ...Filename) {
	*list = append(*list, it...)
}
func (list *FileSet) AppendUniq(it ...Filename) {
	for _, x := range it {
		if !list.Contains(x) {
			*list = append(*list, x)
		}
	}
}
func (list FileSet) StringSet() base.StringSet {
	result := make(base.StringSet, len(list))
	for i, it := range list {
		result[i] = it.String()
	}
	return result
}
func (list FileSet) Join(delim string) string {
	return base.JoinString(delim, list...)
}

/***************************************
 * Frontend
 ***************************************/

var UFS UFSFrontEnd = make_ufs_frontend()

type UFSFrontEnd struct {
	Executable Filename

	Root   Directory
	Saved  Directory
	Config Directory
}

func (ufs *UFSFrontEnd) File(str string) Filename {
	return MakeFilename(str)
}
func (ufs *UFSFrontEnd) Dir(str string) Directory {
	return MakeDirectory(str)
}
func (ufs *UFSFrontEnd) Touch(dst Filename) error {
	return ufs.SetMTime(dst, time.Now().Local())
}
func (ufs *UFSFrontEnd) SetMTime(dst Filename, mtime time.Time) error {
	base.LogDebug(LogUFS, "chtimes %v", dst)
	return os.Chtimes(dst.String(), mtime, mtime)
}
func (ufs *UFSFrontEnd) MTime(src Filename) (time.Time, error) {
	return GetModificationTime(src)
}
func (ufs *UFSFrontEnd) Remove(dst Filename) error {
	base.LogDebug(LogUFS, "remove %v", dst)
	return os.Remove(dst.String())
}
func (ufs *UFSFrontEnd) Mkdir(dst Directory) {
	if err := ufs.MkdirEx(dst); err != nil {
		base.LogPanicErr(LogUFS, err)
	}
}
func (ufs *UFSFrontEnd) MkdirEx(dst Directory) error {
	path := dst.String()
	if st, err := os.Stat(path); st != nil && (err == nil || os.IsExist(err)) {
		if !st.IsDir() {
			return fmt.Errorf("ufs: %q already exist, but is not a directory", dst)
		}
	} else {
		base.LogDebug(LogUFS, "mkdir %v", dst)
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			return fmt.Errorf("ufs: mkdir %q got error %w", dst, err)
		}
	}
	return nil
}
func (ufs *UFSFrontEnd) CreateWriter(dst Filename) (*os.File, error) {
	if err := ufs.MkdirEx(dst.Dirname); err != nil {
		return nil, err
	}
	base.LogDebug(LogUFS, "create '%v'", dst)
	return os.Create(dst.String())
}
func (ufs *UFSFrontEnd) CreateFile(dst Filename, write func(*os.File) error) (err error) {
	var outp *os.File
	if outp, err = ufs.CreateWriter(dst); err == nil {
		defer func() {
			closeErr := outp.Close()
			if err == nil {
				err = closeErr
			}
		}()
		if err = write(outp); err == nil {
			return nil
		}
	}
	base.LogWarning(LogUFS, "CreateFile: caught %v while trying to create %v", err, dst)
	return err
}
func (ufs *UFSFrontEnd) Create(dst Filename, write func(io.Writer) error) error {
	return ufs.CreateFile(dst, func(f *os.File) error {
		return write(f)
	})
}
func (ufs *UFSFrontEnd) CreateBuffered(dst Filename, write func(io.Writer) error) error {
	return ufs.Create(dst, func(w io.Writer) error {
		buffered := bufio.NewWriter(w)
		if err := write(buffered); err != nil {
			return err
		}
		return buffered.Flush()
	})
}

// SafeCreate writes to a temporary file first, which is renamed over dst only on success.
func (ufs *UFSFrontEnd) SafeCreate(dst Filename, write func(io.Writer) error) error {
	tmpFilename := dst.ReplaceExt(dst.Ext() + ".tmp")
	defer os.Remove(tmpFilename.String())

	err := ufs.CreateBuffered(tmpFilename, write)
	if err == nil {
		if err = os.Rename(tmpFilename.String(), dst.String()); err != nil {
			base.LogWarning(LogUFS, "SafeCreate: %v", err)
		}
	}
	return err
}

func (ufs *UFSFrontEnd) OpenFile(src Filename, read func(*os.File) error) (err error) {
	var input *os.File
	base.LogDebug(LogUFS, "open '%v'", src)

	if input, err = os.Open(src.String()); err == nil {
		defer func() {
			closeErr := input.Close()
			if err == nil {
				err = closeErr
			}
		}()
		if err = read(input); err == nil {
			return nil
		}
	}

	base.LogVerbose(LogUFS, "OpenFile: %v", err)
	return err
}
func (ufs *UFSFrontEnd) Open(src Filename, read func(io.Reader) error) error {
	return ufs.OpenFile(src, func(f *os.File) error {
		return read(f)
	})
}
func (ufs *UFSFrontEnd) OpenBuffered(src Filename, read func(io.Reader) error) error {
	return ufs.Open(src, func(r io.Reader) error {
		return read(bufio.NewReader(r))
	})
}
func (ufs *UFSFrontEnd) ReadAll(src Filename) ([]byte, error) {
	var raw []byte
	err := ufs.OpenFile(src, func(f *os.File) error {
		var err error
		raw, err = io.ReadAll(f)
		return err
	})
	return raw, err
}
func (ufs *UFSFrontEnd) Rename(src, dst Filename) error {
	if err := ufs.MkdirEx(dst.Dirname); err != nil {
		return err
	}
	base.LogDebug(LogUFS, "rename file '%v' to '%v'", src, dst)
	return os.Rename(src.String(), dst.String())
}
func (ufs *UFSFrontEnd) Copy(src, dst Filename) error {
	base.LogDebug(LogUFS, "copy file '%v' to '%v'", src, dst)
	return ufs.Open(src, func(r io.Reader) error {
		return ufs.Create(dst, func(w io.Writer) error {
			_, err := io.Copy(w, r)
			return err
		})
	})
}

func (ufs *UFSFrontEnd) MountRootDirectory(root Directory) error {
	base.LogVerbose(LogUFS, "mount root directory %q", root)
	ufs.Root = root
	ufs.Saved = root.Folder(".icebuilder")
	return nil
}
func (ufs *UFSFrontEnd) MountConfigDirectory(config Directory) error {
	base.LogVerbose(LogUFS, "mount config directory %q", config)
	ufs.Config = config
	return nil
}

func (ufs *UFSFrontEnd) GetWorkingDir() (Directory, error) {
	if wd, err := os.Getwd(); err == nil {
		return MakeDirectory(wd), nil
	} else {
		return Directory{}, err
	}
}

func make_ufs_frontend() (ufs UFSFrontEnd) {
	if executable, err := os.Executable(); err == nil {
		ufs.Executable = MakeFilename(executable)
	}

	root, err := ufs.GetWorkingDir()
	base.LogPanicIfFailed(LogUFS, err)
	base.LogPanicIfFailed(LogUFS, ufs.MountRootDirectory(root))

	if config, err := os.UserConfigDir(); err == nil {
		base.LogPanicIfFailed(LogUFS, ufs.MountConfigDirectory(MakeDirectory(config).Folder("icebuilder")))
	} else {
		base.LogPanicIfFailed(LogUFS, ufs.MountConfigDirectory(ufs.Saved))
	}
	return ufs
}

func MakeGlobRegexp(glob ...string) *regexp.Regexp {
	if len(glob) == 0 {
		return nil
	}
	expr := "(?i)("
	for i, x := range glob {
		x = regexp.QuoteMeta(x)
		x = strings.ReplaceAll(x, "\\?", ".")
		x = strings.ReplaceAll(x, "\\*", ".*?")
		x = strings.ReplaceAll(x, "/", "[\\\\/]")
		x = "(" + x + ")"
		if i == 0 {
			expr += x
		} else {
			expr += "|" + x
		}
	}
	return regexp.MustCompile(expr + ")$")
}
