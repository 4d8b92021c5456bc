package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/xac"
	"github.com/R-Hidayatullah/tos-parser/xsm"
	"gopkg.in/yaml.v2"
)

func loadAny(path string, observer emfx.Observer) (interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xac":
		return xac.LoadWithOption(path, &xac.Option{Observer: observer})
	case ".xsm":
		return xsm.LoadWithOption(path, &xsm.Option{Observer: observer})
	}
	return nil, fmt.Errorf("unsupported input type: %v", filepath.Ext(path))
}

// dump writes the decoded document as YAML.
func dump(w io.Writer, doc interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
