package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/catalog"
)

// importCatalog loads a JSON list of categories with their lessons:
//
//	[{"name": "Go", "description": "...", "lessons": [{"title": "Intro", "content": "...", "video_url": "https://..."}]}]
func (cli *commandLine) importCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading catalog file")
	}
	var entries []catalog.ImportCategory
	if err = json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "decoding catalog file")
	}
	for _, entry := range entries {
		if err = cli.validate.Struct(entry); err != nil {
			return err
		}
	}

	nCats, nLessons, err := cli.catalogSvc.Import(context.Background(), entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %d categories and %d lessons\n", nCats, nLessons)
	return nil
}
