//go:build !unix

package main

import (
	"context"

	"github.com/ltaportal/procurement/pkg/portal"
	"go.uber.org/zap"
)

func watchVisibility(context.Context, *portal.Visibility, *zap.Logger) (stop func()) {
	return func() {}
}
