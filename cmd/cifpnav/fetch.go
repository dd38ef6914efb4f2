// cmd/cifpnav/fetch.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/cifpnav/cifpnav/log"

	"golang.org/x/net/html"
)

const cifpFilename = "FAACIFP18"

var ErrNoCIFPLink = errors.New("no CIFP link found")

// FetchCIFP finds the link to the current CIFP zip file on the FAA's
// download page, downloads it and writes the CIFP file in it to dest.
func FetchCIFP(ctx context.Context, page string, dest string, lg *log.Logger) error {
	zipURL, err := getCIFPZipURL(ctx, page)
	if err != nil {
		return err
	}
	lg.Infof("CIFP is at %s", zipURL)

	b, err := httpGet(ctx, zipURL)
	if err != nil {
		return err
	}
	lg.Infof("Received %d bytes", len(b))

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return fmt.Errorf("%s: %w", zipURL, err)
	}

	var cifpFile *zip.File
	for _, f := range zr.File {
		lg.Debugf("zip entry: %s (%d bytes)", f.Name, f.UncompressedSize64)
		if f.Name == cifpFilename {
			cifpFile = f
		}
	}
	if cifpFile == nil {
		return fmt.Errorf("%s: didn't find %q in zip file", zipURL, cifpFilename)
	}

	r, err := cifpFile.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return err
	}
	lg.Infof("%s: wrote %d bytes", dest, n)
	return nil
}

func httpGet(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// getCIFPZipURL scrapes the CIFP page for the first link inside a
// <cfoutput> element, which is the most recent cycle.
func getCIFPZipURL(ctx context.Context, page string) (string, error) {
	b, err := httpGet(ctx, page)
	if err != nil {
		return "", err
	}
	doc, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	href := ""
	var parse func(*html.Node)
	parse = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "cfoutput" {
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.ElementNode && child.Data == "a" {
					for _, attr := range child.Attr {
						if attr.Key == "href" && href == "" {
							href = attr.Val
						}
					}
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			parse(child)
		}
	}
	parse(doc)

	if href == "" {
		return "", fmt.Errorf("%s: %w", page, ErrNoCIFPLink)
	}

	// The link may be relative to the page.
	base, err := url.Parse(page)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
