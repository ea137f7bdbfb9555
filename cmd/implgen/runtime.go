package main

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/implgen/classpath"
	"github.com/dhamidi/implgen/generator"
	"github.com/dhamidi/implgen/java"
	"github.com/dhamidi/implgen/jdk"
)

var log = commonlog.GetLogger("implgen")

// runtime opens the standard library and the configured class path. When no
// Java installation is configured and none is found, directory inputs that
// only refer to their own types still work.
func (a *app) runtime(ctx context.Context) (java.Loader, func(), error) {
	var (
		parent  java.Loader
		closers []func() error
	)

	rt, err := a.openJDK(ctx)
	switch {
	case err == nil:
		parent = rt
		closers = append(closers, rt.Close)
	case errors.Is(err, jdk.ErrNoRuntime) && a.cfg.JavaHome == "":
		log.Warningf("no Java runtime: %s", err)
	default:
		return nil, nil, err
	}

	var sources []classpath.Source
	for _, path := range classpath.Split(a.cfg.ClassPath) {
		src, err := classpath.Open(path)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, errors.Wrapf(err, "class path entry %s", path)
		}
		sources = append(sources, src)
	}
	if len(sources) > 0 {
		cp := classpath.New(parent, sources...)
		parent = cp
		closers = append(closers, cp.Close)
	}

	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warningf("%s", err)
			}
		}
	}
	return parent, release, nil
}

func (a *app) openJDK(ctx context.Context) (*jdk.Runtime, error) {
	if a.cfg.JavaHome != "" {
		return jdk.Open(a.cfg.JavaHome)
	}
	return jdk.Discover(ctx)
}

// newGenerator builds a generator from the configuration.
func (a *app) newGenerator(ctx context.Context) (*generator.Generator, func(), error) {
	runtime, release, err := a.runtime(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := []generator.Option{generator.WithBuiltinPrefix(a.cfg.BuiltinPrefix)}
	if runtime != nil {
		opts = append(opts, generator.WithRuntime(runtime))
	}
	return generator.New(filepath.Clean(a.cfg.Output), opts...), release, nil
}
