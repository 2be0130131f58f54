// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	tfe "github.com/hashicorp/go-tfe"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/log"
	"github.com/invctl/invctl/internal/svutil"
)

// BackendRemote serves state from a Terraform Enterprise or HCP Terraform
// server. Workspaces are the stacks; state versions are the snapshots.
type BackendRemote struct {
	Ctx             context.Context
	Name            string
	Hostname        string `yaml:"hostname"`
	Organization    string `yaml:"organization"`
	TokenValue      string `yaml:"token"`
	WorkspacePrefix string `yaml:"workspace_prefix"`

	tfeClient *tfe.Client
}

// Sentinel errors for validation and unsupported cases. These enable callers
// to detect specific conditions via errors.Is while keeping messages
// consistent.
var (
	ErrInvalidClientType  = errors.New("not a Cloud or Enterprise TFE server")
	ErrOrganizationNotSet = errors.New("organization is not set")
)

// Stacks lists the organization's workspace names, optionally filtered by
// the configured prefix.
func (be *BackendRemote) Stacks() ([]string, error) {
	client, err := be.Client()
	if err != nil {
		return nil, err
	}

	org, err := be.Org()
	if err != nil {
		return nil, err
	}

	options := tfe.WorkspaceListOptions{
		ListOptions: tfe.ListOptions{PageNumber: 1, PageSize: 100},
	}

	var stacks []string
	for {
		page, err := client.Workspaces.List(be.Ctx, org, &options)
		if err != nil {
			ctxErr := ErrorContext{
				Host:      be.Host(),
				Org:       org,
				Operation: "list workspaces",
				Resource:  "organization",
			}
			return nil, FriendlyTFE(err, ctxErr)
		}

		for _, ws := range page.Items {
			if be.WorkspacePrefix != "" && !strings.HasPrefix(ws.Name, be.WorkspacePrefix) {
				continue
			}
			stacks = append(stacks, ws.Name)
		}

		if page.Pagination.NextPage == 0 {
			break
		}
		options.ListOptions.PageNumber++
	}

	return stacks, nil
}

// Snapshots lists the state versions of a workspace, most recent first
// (the API's native order).
func (be *BackendRemote) Snapshots(path string) ([]*tfe.StateVersion, error) {
	client, err := be.Client()
	if err != nil {
		return nil, err
	}

	org, err := be.Org()
	if err != nil {
		return nil, err
	}

	options := tfe.StateVersionListOptions{
		Workspace:    path,
		Organization: org,
		ListOptions:  tfe.ListOptions{PageNumber: 1, PageSize: 100},
	}

	var results []*tfe.StateVersion
	for {
		page, err := client.StateVersions.List(be.Ctx, &options)
		if err != nil {
			ctxErr := ErrorContext{
				Host:      be.Host(),
				Org:       org,
				Workspace: path,
				Operation: "list state versions",
				Resource:  "stateversion",
			}
			return nil, FriendlyTFE(err, ctxErr)
		}

		results = append(results, page.Items...)

		log.Debugf("page: %d, total: %d", page.CurrentPage, len(results))

		if page.Pagination.NextPage == 0 {
			break
		}
		options.ListOptions.PageNumber++
	}

	return results, nil
}

// State resolves the snapshot spec against the workspace's state versions
// and downloads the matching document.
func (be *BackendRemote) State(path string, spec string) ([]byte, error) {
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

	doc, err := be.download(versions[0].DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return doc, nil
}

// Client optionally validates and returns a TFE client to the configured
// host.
func (be *BackendRemote) Client(validate ...bool) (*tfe.Client, error) {
	if be.tfeClient != nil {
		return be.tfeClient, nil
	}

	token, err := be.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	client, err := tfe.NewClient(&tfe.Config{
		Address: "https://" + be.Host(),
		Token:   token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TFE client: %w", err)
	}

	if len(validate) > 0 && validate[0] {
		if !(client.IsCloud() || client.IsEnterprise()) {
			return nil, fmt.Errorf("failed to validate TFE client: %w", ErrInvalidClientType)
		}
	}

	be.tfeClient = client
	return client, nil
}

// Host returns the TFE/HCP host: the backend definition's hostname, the
// config file host entry, or the cloud default.
func (be *BackendRemote) Host() string {
	if be.Hostname != "" {
		return be.Hostname
	}

	host, err := config.GetString("host")
	if err == nil && host != "" {
		return host
	}

	return "app.terraform.io"
}

// Org returns the organization: the backend definition's organization or
// the config file org entry.
func (be *BackendRemote) Org() (string, error) {
	if be.Organization != "" {
		return be.Organization, nil
	}

	org, err := config.GetString("org")
	if err == nil && org != "" {
		return org, nil
	}

	return "", fmt.Errorf("set organization in the backend definition or invctl.yaml org: %w", ErrOrganizationNotSet)
}

// Token retrieves the API token from the environment, the backend
// definition, or the terraform credentials file, in that order.
func (be *BackendRemote) Token() (string, error) {
	var token string

	// The precedence is:
	// 1. TF_TOKEN_<host with dots as underscores>
	// 2. TF_TOKEN
	// 3. Token in the backend definition
	// 4. Token in the TF credentials file.
	hostname := strings.ReplaceAll(be.Host(), ".", "_")
	if token = os.Getenv("TF_TOKEN_" + hostname); token == "" {
		token = os.Getenv("TF_TOKEN")
	}

	if token != "" {
		return token, nil
	}

	token = be.TokenValue

	if token == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		credsFile := home + "/.terraform.d/credentials.tfrc.json"
		data, err := os.ReadFile(credsFile)
		if err != nil {
			return "", fmt.Errorf("failed to read credentials file: %w", err)
		}

		var creds struct {
			Credentials map[string]struct {
				Token string `json:"token"`
			} `json:"credentials"`
		}

		if err := json.Unmarshal(data, &creds); err != nil {
			return "", fmt.Errorf("failed to unmarshal credentials file: %w", err)
		}

		if cred, ok := creds.Credentials[be.Host()]; ok {
			return cred.Token, nil
		}
	}

	return token, nil
}

func (be *BackendRemote) String() string {
	org, _ := be.Org()
	return fmt.Sprintf("remote %s (%s/%s)", be.Name, be.Host(), org)
}

func (be *BackendRemote) Type() string {
	return "remote"
}
