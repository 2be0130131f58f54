// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	tfe "github.com/hashicorp/go-tfe"

	awsx "github.com/invctl/invctl/internal/aws"
	"github.com/invctl/invctl/internal/log"
	"github.com/invctl/invctl/internal/svutil"
)

// BackendS3 serves state from a versioned S3 bucket. Object versions are the
// snapshots; bodies are cached on disk keyed by version id.
type BackendS3 struct {
	Ctx     context.Context
	Name    string
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`

	svc *s3v2.Client
}

// Stacks lists the object keys under the prefix that end in .tfstate.
func (be *BackendS3) Stacks() ([]string, error) {
	svc, err := be.client()
	if err != nil {
		return nil, err
	}

	paginator := s3v2.NewListObjectsV2Paginator(svc, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(be.Bucket),
		Prefix: awsv2.String(be.Prefix),
	})

	var stacks []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(be.Ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".tfstate") {
				continue
			}
			stacks = append(stacks, *obj.Key)
		}
	}

	sort.Strings(stacks)
	return stacks, nil
}

// Snapshots lists the object versions of a stack key, parses each body for
// its serial, and returns tfe.StateVersion descriptors, most recent first.
// Versions older than the most recent delete marker are dropped.
func (be *BackendS3) Snapshots(path string) ([]*tfe.StateVersion, error) {
	if err := PurgeCache(); err != nil {
		log.WithError(err).Warnf("failed to purge cache")
	}

	svc, err := be.client()
	if err != nil {
		return nil, err
	}

	paginator := s3v2.NewListObjectVersionsPaginator(svc, &s3v2.ListObjectVersionsInput{
		Bucket: awsv2.String(be.Bucket),
		Prefix: awsv2.String(path),
	})

	var allDeleteMarkers []types.DeleteMarkerEntry
	var allVersions []types.ObjectVersion
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(be.Ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list object versions: %w", err)
		}
		allDeleteMarkers = append(allDeleteMarkers, page.DeleteMarkers...)
		allVersions = append(allVersions, page.Versions...)
	}

	var mostRecentDelete time.Time
	for _, d := range allDeleteMarkers {
		// The prefix is literally a prefix, so lock files and other
		// siblings come back too. Keep exact key matches only.
		if d.Key == nil || *d.Key != path {
			continue
		}
		if d.LastModified != nil && d.LastModified.After(mostRecentDelete) {
			mostRecentDelete = *d.LastModified
		}
	}

	var versions []*tfe.StateVersion
	for _, v := range allVersions {
		if v.Key == nil || *v.Key != path {
			continue
		}
		if v.VersionId == nil || v.LastModified == nil {
			continue
		}
		if v.LastModified.Before(mostRecentDelete) {
			continue
		}

		body, err := be.body(path, *v.VersionId)
		if err != nil {
			log.WithError(err).Errorf("failed to read object version %s", *v.VersionId)
			continue
		}

		var doc struct {
			Serial int64 `json:"serial"`
		}
		_ = json.Unmarshal(body, &doc)

		versions = append(versions, &tfe.StateVersion{
			ID:        *v.VersionId,
			CreatedAt: *v.LastModified,
			Serial:    doc.Serial,
		})
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})

	return versions, nil
}

// State resolves the snapshot spec against the stack's object versions and
// returns the matching body.
func (be *BackendS3) State(path string, spec string) ([]byte, error) {
	candidates, err := be.Snapshots(path)
	if err != nil {
		return nil, err
	}

	specs := []string{}
	if spec != "" {
		specs = append(specs, spec)
	}
	versions, err := svutil.Resolve(candidates, specs...)
	if err != nil {
		return nil, err
	}

	return be.body(path, versions[0].ID)
}

// body fetches one object version, consulting the cache first.
func (be *BackendS3) body(path, versionID string) ([]byte, error) {
	if entry, ok := CacheReader(be, path, versionID); ok {
		return entry.Data, nil
	}

	svc, err := be.client()
	if err != nil {
		return nil, err
	}

	result, err := svc.GetObject(be.Ctx, &s3v2.GetObjectInput{
		Bucket:    awsv2.String(be.Bucket),
		Key:       awsv2.String(path),
		VersionId: awsv2.String(versionID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	if err := CacheWriter(be, path, versionID, data); err != nil {
		log.WithError(err).Errorf("error writing to cache")
	}

	return data, nil
}

// client lazily builds the S3 client, inheriting the shell's AWS setup with
// optional region/profile overrides.
func (be *BackendS3) client() (*s3v2.Client, error) {
	if be.svc != nil {
		return be.svc, nil
	}

	var cfgOpts []awsx.Option
	if be.Region != "" {
		cfgOpts = append(cfgOpts, awsx.WithRegion(be.Region))
	}
	if be.Profile != "" {
		cfgOpts = append(cfgOpts, awsx.WithProfile(be.Profile))
	}
	cfg, err := awsx.LoadAWSConfig(be.Ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	be.svc = awsx.NewS3(cfg)
	return be.svc, nil
}

func (be *BackendS3) String() string {
	return fmt.Sprintf("s3 %s (%s/%s)", be.Name, be.Bucket, be.Prefix)
}

func (be *BackendS3) Type() string {
	return "s3"
}
