package utils

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

var LogSourceControl = base.NewLogCategory("SourceControl")

type SourceControlProvider interface {
	IsInRepository(Filename) bool
	IsCheckedOut(Filename) bool
	CheckOut(Filename) error
	GetFileStatus(*SourceControlFileStatus) error
}

// EnsureFileIsCheckedOut only acts on files under source control which are not checked out yet.
func EnsureFileIsCheckedOut(scm SourceControlProvider, f Filename) error {
	if scm.IsInRepository(f) && !scm.IsCheckedOut(f) {
		base.LogVerbose(LogSourceControl, "check out %q", f)
		if err := scm.CheckOut(f); err != nil {
			return fmt.Errorf("failed to check out %q: %w", f, err)
		}
	}
	return nil
}

var sourceControlProviders = base.NewSharedMapT[Directory, SourceControlProvider]()

// GetSourceControlProvider returns the provider of the repository containing dir.
func GetSourceControlProvider(dir Directory) SourceControlProvider {
	if scm, ok := sourceControlProviders.Get(dir); ok {
		return scm
	}

	var scm SourceControlProvider = DummySourceControl{}
	for it := dir; it.Valid(); {
		if git, err := NewGitSourceControl(it); err == nil {
			base.LogVerbose(LogSourceControl, "found Git source control in %q", git.Repository)
			scm = git
			break
		}
		if parent := it.Parent(); parent != it {
			it = parent
		} else {
			break
		}
	}

	scm, _ = sourceControlProviders.FindOrAdd(dir, scm)
	return scm
}

/***************************************
 * Source Control State
 ***************************************/

type SourceControlState byte

const (
	SOURCECONTROL_IGNORED SourceControlState = iota
	SOURCECONTROL_UNTRACKED
	SOURCECONTROL_UPTODATE
	SOURCECONTROL_MODIFIED
	SOURCECONTROL_ADDED
	SOURCECONTROL_DELETED
	SOURCECONTROL_RENAMED
)

func GetSourceControlStates() []SourceControlState {
	return []SourceControlState{
		SOURCECONTROL_IGNORED,
		SOURCECONTROL_UNTRACKED,
		SOURCECONTROL_UPTODATE,
		SOURCECONTROL_MODIFIED,
		SOURCECONTROL_ADDED,
		SOURCECONTROL_DELETED,
		SOURCECONTROL_RENAMED,
	}
}
func (x SourceControlState) Ignored() bool {
	return x == SOURCECONTROL_IGNORED
}
func (x SourceControlState) String() string {
	switch x {
	case SOURCECONTROL_IGNORED:
		return "IGNORED"
	case SOURCECONTROL_UNTRACKED:
		return "UNVERSIONED"
	case SOURCECONTROL_UPTODATE:
		return "UPTODATE"
	case SOURCECONTROL_MODIFIED:
		return "MODIFIED"
	case SOURCECONTROL_ADDED:
		return "ADDED"
	case SOURCECONTROL_DELETED:
		return "DELETED"
	case SOURCECONTROL_RENAMED:
		return "RENAMED"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}
func (x *SourceControlState) Set(in string) error {
	for _, it := range GetSourceControlStates() {
		if strings.EqualFold(it.String(), in) {
			*x = it
			return nil
		}
	}
	return base.MakeUnexpectedValueError(x, in)
}
func (x SourceControlState) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *SourceControlState) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}

type SourceControlFileStatus struct {
	Path  Filename
	State SourceControlState
}

/***************************************
 * Dummy source control
 ***************************************/

type DummySourceControl struct{}

func (x DummySourceControl) IsInRepository(Filename) bool { return false }
func (x DummySourceControl) IsCheckedOut(Filename) bool   { return true }
func (x DummySourceControl) CheckOut(Filename) error      { return nil }
func (x DummySourceControl) GetFileStatus(file *SourceControlFileStatus) error {
	file.State = SOURCECONTROL_IGNORED
	return nil
}

/***************************************
 * Git source control
 ***************************************/

// Files of a Git work tree are checked out once writable: a read-only file
// comes from a locked checkout (sparse or skip-worktree tooling) and is made
// writable again on check out.
type GitSourceControl struct {
	Executable string
	Repository Directory
}

func NewGitSourceControl(repository Directory) (*GitSourceControl, error) {
	if gitDir := repository.Folder(".git"); !gitDir.Exists() && !repository.File(".git").Exists() {
		return nil, fmt.Errorf("invalid git repository %q", gitDir)
	}

	executable, err := exec.LookPath("git")
	if err != nil {
		return nil, err
	}

	return &GitSourceControl{
		Executable: executable,
		Repository: repository,
	}, nil
}

func (git *GitSourceControl) IsInRepository(f Filename) bool {
	if !f.IsIn(git.Repository) {
		return false
	}
	_, err := git.Command("ls-files", "--error-unmatch", "--", f.Relative(git.Repository))
	return err == nil
}
func (git *GitSourceControl) IsCheckedOut(f Filename) bool {
	return IsWritable(f)
}
func (git *GitSourceControl) CheckOut(f Filename) error {
	return SetWritable(f, true)
}
func (git *GitSourceControl) GetFileStatus(file *SourceControlFileStatus) error {
	output, err := git.Command("status", "-s", "--porcelain=v1", "--", file.Path.Relative(git.Repository))
	if err != nil {
		return err
	}

	output = bytes.TrimRight(output, "\r\n")
	switch {
	case len(output) < 2:
		file.State = SOURCECONTROL_UPTODATE
	case bytes.HasPrefix(output, []byte("??")):
		file.State = SOURCECONTROL_UNTRACKED
	case bytes.HasPrefix(output, []byte("!!")):
		file.State = SOURCECONTROL_IGNORED
	case output[0] == 'A':
		file.State = SOURCECONTROL_ADDED
	case output[0] == 'R' || output[1] == 'R':
		file.State = SOURCECONTROL_RENAMED
	case output[0] == 'D' || output[1] == 'D':
		file.State = SOURCECONTROL_DELETED
	default:
		file.State = SOURCECONTROL_MODIFIED
	}
	return nil
}

func (git *GitSourceControl) Command(name string, args ...string) ([]byte, error) {
	args = append([]string{"--no-optional-locks", name}, args...)
	base.LogVeryVerbose(LogSourceControl, "run git command %q", strings.Join(args, " "))

	proc := exec.Command(git.Executable, args...)
	proc.Env = os.Environ()
	proc.Dir = git.Repository.String()

	output, err := proc.Output()
	if err != nil {
		base.LogVeryVerbose(LogSourceControl, "git command %v returned %v: %s", strings.Join(args, " "), err, output)
	}
	return output, err
}
