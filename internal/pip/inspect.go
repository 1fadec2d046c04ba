package pip

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"lspinstall/internal/process"
	"lspinstall/internal/result"
)

// InstalledPackage is one entry of "pip list --format=json". LatestVersion is
// present only when pip reports a newer release.
type InstalledPackage struct {
	Name           string
	Version        string
	LatestVersion  result.Optional[string]
	LatestFiletype result.Optional[string]
}

// OutdatedPackage describes a primary package with a newer release.
type OutdatedPackage struct {
	Name           string `json:"name"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
}

type listEntry struct {
	Name           string  `json:"name"`
	Version        string  `json:"version"`
	LatestVersion  *string `json:"latest_version"`
	LatestFiletype *string `json:"latest_filetype"`
}

// ParsePackageList decodes pip's JSON package list. Entries without a name or
// version are skipped.
func ParsePackageList(data []byte) ([]InstalledPackage, error) {
	var entries []listEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode pip package list: %w", err)
	}
	pkgs := make([]InstalledPackage, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.Version == "" {
			continue
		}
		pkgs = append(pkgs, InstalledPackage{
			Name:           e.Name,
			Version:        e.Version,
			LatestVersion:  result.Filter(result.OfNilable(e.LatestVersion), nonEmpty),
			LatestFiletype: result.Filter(result.OfNilable(e.LatestFiletype), nonEmpty),
		})
	}
	return pkgs, nil
}

func nonEmpty(s string) bool { return s != "" }

// ListInstalledPackages lists the packages installed in installDir's virtual
// environment. With outdated set only packages with newer releases are listed.
func ListInstalledPackages(ctx context.Context, spawner process.Spawner, installDir string, outdated bool) result.Result[[]InstalledPackage] {
	if ctx == nil {
		ctx = context.Background()
	}
	args := []string{"-m", "pip", "list"}
	if outdated {
		args = append(args, "--outdated")
	}
	args = append(args, "--format=json")

	venv := filepath.Join(installDir, VenvDir)
	out := spawner.Spawn(ctx, "python", args, process.SpawnOptions{
		Dir:         installDir,
		Env:         map[string]string{"VIRTUAL_ENV": venv},
		PrependPath: []string{BinDir(venv)},
	})
	out = result.MapErr(out, func(err error) error {
		return fmt.Errorf("list packages in %s: %w", installDir, err)
	})
	return result.FlatMap(out, func(o process.Output) result.Result[[]InstalledPackage] {
		return result.Of(ParsePackageList([]byte(o.Stdout)))
	})
}

// GetInstalledPrimaryPackageVersion returns the installed version of the
// receipt's primary package.
func GetInstalledPrimaryPackageVersion(ctx context.Context, spawner process.Spawner, receipt Receipt, installDir string) result.Result[string] {
	if receipt.PrimarySource.Type != SourceType {
		return result.Failure[string](ErrUnsupportedReceipt)
	}
	pkgs := ListInstalledPackages(ctx, spawner, installDir, false)
	return result.FlatMap(pkgs, func(pkgs []InstalledPackage) result.Result[string] {
		return result.MapOptional(findPrimary(pkgs, receipt), func(p InstalledPackage) string {
			return p.Version
		}).OrFail(ErrPackageNotFound)
	})
}

// CheckOutdatedPrimaryPackage reports whether the receipt's primary package
// has a newer release. ErrNotOutdated is returned when it does not.
func CheckOutdatedPrimaryPackage(ctx context.Context, spawner process.Spawner, receipt Receipt, installDir string) result.Result[OutdatedPackage] {
	if receipt.PrimarySource.Type != SourceType {
		return result.Failure[OutdatedPackage](ErrUnsupportedReceipt)
	}
	pkgs := ListInstalledPackages(ctx, spawner, installDir, true)
	return result.FlatMap(pkgs, func(pkgs []InstalledPackage) result.Result[OutdatedPackage] {
		primary := result.Filter(findPrimary(pkgs, receipt), func(p InstalledPackage) bool {
			return p.LatestVersion.IsPresent()
		})
		return result.MapOptional(primary, func(p InstalledPackage) OutdatedPackage {
			return OutdatedPackage{
				Name:           p.Name,
				CurrentVersion: p.Version,
				LatestVersion:  p.LatestVersion.OrElse(""),
			}
		}).OrFail(ErrNotOutdated)
	})
}

// findPrimary returns the first entry whose normalized name equals the
// receipt's primary package.
func findPrimary(pkgs []InstalledPackage, receipt Receipt) result.Optional[InstalledPackage] {
	want := NormalizePackageName(receipt.PrimarySource.Package)
	for _, p := range pkgs {
		if NormalizePackageName(p.Name) == want {
			return result.Some(p)
		}
	}
	return result.None[InstalledPackage]()
}
