package slice

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

var LogUpgrade = base.NewLogCategory("Upgrade")

/***************************************
 * Host services used by the upgrade
 ***************************************/

type PackageManager interface {
	IsPackageInstalled(p Project, packageId string) bool
	InstallLatestPackage(p Project, packageId string) error
	Restore(ctx context.Context, p Project) error
	// OnBatchEnd runs fn once pending package operations of the batch are done.
	OnBatchEnd(fn func())
}

type AssemblyReference interface {
	Name() string
	HintPath() (string, bool)
	SetHintPath(value string)
	RemoveHintPath()
}

// UpgradableProject rewrites the settings left by legacy IceBuilder versions.
type UpgradableProject interface {
	Project
	AssemblyReferences() []AssemblyReference
	UpgradeProjectImports() bool
	UpgradeProjectProperties(cpp bool) bool
	RemoveIceBuilderFromProject(keepProjectFlavor bool) bool
	UpgradeProjectItems(cpp bool) bool
}

type UpgradeProgress interface {
	ReportProgress(project string, index int)
	Finished()
}

/***************************************
 * Dispatcher: marshals progress callbacks to the caller goroutine
 ***************************************/

type Dispatcher interface {
	// Invoke waits for fn to complete.
	Invoke(fn func())
	// BeginInvoke returns as soon as fn is queued.
	BeginInvoke(fn func())
}

type ChannelDispatcher struct {
	queue chan func()
}

func NewChannelDispatcher() *ChannelDispatcher {
	return &ChannelDispatcher{queue: make(chan func(), 16)}
}
func (x *ChannelDispatcher) Invoke(fn func()) {
	done := make(chan struct{})
	x.queue <- func() {
		defer close(done)
		fn()
	}
	<-done
}
func (x *ChannelDispatcher) BeginInvoke(fn func()) {
	x.queue <- fn
}

// Pump runs queued callbacks on the calling goroutine until done is closed.
func (x *ChannelDispatcher) Pump(done <-chan struct{}) {
	for {
		select {
		case fn := <-x.queue:
			fn()
		case <-done:
			for {
				select {
				case fn := <-x.queue:
					fn()
				default:
					return
				}
			}
		}
	}
}

type DirectDispatcher struct{}

func (DirectDispatcher) Invoke(fn func())      { fn() }
func (DirectDispatcher) BeginInvoke(fn func()) { fn() }

/***************************************
 * Upgrade
 ***************************************/

// TryUpgrade selects the IceBuilder projects which can be upgraded, indexed by their unique name.
func TryUpgrade(projects []Project) map[string]UpgradableProject {
	upgradeProjects := make(map[string]UpgradableProject)
	for _, p := range projects {
		if IsIceBuilderEnabled(p) == PROJECT_NONE {
			continue
		}
		if upgradable, ok := p.(UpgradableProject); ok {
			upgradeProjects[p.Name()] = upgradable
		}
	}
	return upgradeProjects
}

// Upgrade runs in a background goroutine and returns the number of upgraded projects.
// Cancellation is checked once per project, projects already upgraded stay upgraded.
func Upgrade(ctx context.Context, projects map[string]UpgradableProject, nuget PackageManager, progress UpgradeProgress, dispatcher Dispatcher) base.Future[int] {
	names := maps.Keys(projects)
	slices.Sort(names)

	return base.MakeAsyncFuture(func() (upgraded int, err error) {
		defer nuget.OnBatchEnd(func() {
			dispatcher.BeginInvoke(progress.Finished)
		})

		for i, name := range names {
			if ctx.Err() != nil {
				base.LogWarning(LogUpgrade, "upgrade canceled after %d projects", i)
				return upgraded, ctx.Err()
			}

			index := i + 1
			dispatcher.Invoke(func() {
				progress.ReportProgress(name, index)
			})

			if er := upgradeProject(ctx, projects[name], nuget); er != nil {
				base.LogError(LogUpgrade, "%s: %v", name, er)
				if err == nil {
					err = er
				}
				continue
			}
			upgraded++
		}
		return
	})
}

func upgradeProject(ctx context.Context, project UpgradableProject, nuget PackageManager) error {
	name := project.Name()

	if err := nuget.Restore(ctx, project); err != nil {
		base.LogWarning(LogUpgrade, "%s: failed to restore NuGet packages: %v", name, err)
	}
	if !nuget.IsPackageInstalled(project, ICEBUILDER_NUGET_PACKAGE) {
		base.LogInfo(LogUpgrade, "Installing NuGet package %s in project %s", ICEBUILDER_NUGET_PACKAGE, name)
		if err := nuget.InstallLatestPackage(project, ICEBUILDER_NUGET_PACKAGE); err != nil {
			return fmt.Errorf("install %s: %w", ICEBUILDER_NUGET_PACKAGE, err)
		}
	}

	projectType := IsIceBuilderEnabled(project)
	if projectType == PROJECT_NONE {
		return nil
	}

	base.LogInfo(LogUpgrade, "Upgrading project %s Ice Builder settings", name)
	cpp := projectType == PROJECT_CPP

	modified := false
	if projectType == PROJECT_CSHARP {
		assemblyDir, err := getEvaluatedProperty(project, project.ActiveConfiguration(), PROPERTY_ICE_ASSEMBLIES_DIR, "")
		if err != nil {
			return err
		}
		modified = UpgradeReferencesHintPath(project, assemblyDir)
	}

	modified = project.UpgradeProjectImports() || modified
	modified = project.UpgradeProjectProperties(cpp) || modified
	modified = project.RemoveIceBuilderFromProject(true) || modified
	modified = project.UpgradeProjectItems(cpp) || modified

	if modified {
		if err := project.Save(); err != nil {
			return fmt.Errorf("save upgraded project: %w", err)
		}
	} else {
		base.LogVerbose(LogUpgrade, "%s: already up to date", name)
	}
	return nil
}

// UpgradeReferencesHintPath replaces $(IceAssembliesDir) in hint paths of Ice assemblies.
// Hint paths to the zeroc.ice.net package are kept, others are removed.
func UpgradeReferencesHintPath(project UpgradableProject, assemblyDir string) (modified bool) {
	relativeAssemblyDir := assemblyDir
	if len(assemblyDir) > 0 {
		relativeAssemblyDir = project.Dir().AbsoluteFolder(assemblyDir).Relative(project.Dir())
	}
	relativeAssemblyDir = strings.ReplaceAll(relativeAssemblyDir, "/", `\`)

	for _, reference := range project.AssemblyReferences() {
		if !slices.Contains(IceAssemblyNames, reference.Name()) {
			continue
		}
		hintPath, ok := reference.HintPath()
		if !ok || !strings.Contains(hintPath, MACRO_ASSEMBLIES_DIR) {
			continue
		}

		hintPath = strings.ReplaceAll(hintPath, MACRO_ASSEMBLIES_DIR, relativeAssemblyDir)
		if strings.Contains(hintPath, `packages\`+ICE_NET_NUGET_PACKAGE) {
			base.LogVerbose(LogUpgrade, "%s: set %s hint path to %q", project.Name(), reference.Name(), hintPath)
			reference.SetHintPath(hintPath)
		} else {
			base.LogVerbose(LogUpgrade, "%s: remove %s hint path", project.Name(), reference.Name())
			reference.RemoveHintPath()
		}
		modified = true
	}
	return
}
