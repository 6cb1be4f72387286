package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/agentgov/governor/pkg/errno"
)

// blobService builds a shared-key blob client for the first (and assumed
// only) storage account inside the agent's resource group. The account
// key is re-derived on every call; nothing about the account is cached.
func (c *Client) blobService(ctx context.Context, container string) (*azblob.Client, string, error) {
	accountName, err := c.firstStorageAccount(ctx, container)
	if err != nil {
		return nil, "", err
	}

	keys, err := c.storageAccounts.ListKeys(ctx, container, accountName, nil)
	if err != nil {
		return nil, "", errno.ErrGateway.WithMessagef("failed to list storage keys for %s", accountName).WithCause(err)
	}
	if len(keys.Keys) == 0 || keys.Keys[0].Value == nil {
		return nil, "", errno.ErrGateway.WithMessagef("storage account %s returned no keys", accountName)
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, *keys.Keys[0].Value)
	if err != nil {
		return nil, "", errno.ErrGateway.WithMessage("failed to build storage credential").WithCause(err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	svc, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, "", errno.ErrGateway.WithMessage("failed to build blob client").WithCause(err)
	}
	return svc, accountName, nil
}

// firstStorageAccount returns the name of the first storage account in
// the resource group. Exactly one account per agent container is assumed.
func (c *Client) firstStorageAccount(ctx context.Context, container string) (string, error) {
	pager := c.storageAccounts.NewListByResourceGroupPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", errno.ErrGateway.WithMessagef("failed to list storage accounts in %s", container).WithCause(err)
		}
		for _, acct := range page.Value {
			if acct.Name != nil {
				return *acct.Name, nil
			}
		}
	}
	return "", errno.ErrStorageAccountNotFound
}

// EnsureBlobContainer creates the blob container if it does not exist.
func (c *Client) EnsureBlobContainer(ctx context.Context, container, blobContainer string) error {
	svc, _, err := c.blobService(ctx, container)
	if err != nil {
		return err
	}

	_, err = svc.CreateContainer(ctx, blobContainer, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return errno.ErrGateway.WithMessagef("failed to create blob container %s", blobContainer).WithCause(err)
	}
	return nil
}

// PutBlob uploads data, overwriting any existing blob of the same name,
// and returns the blob URL.
func (c *Client) PutBlob(ctx context.Context, container, blobContainer, blobName string, data []byte) (string, error) {
	svc, accountName, err := c.blobService(ctx, container)
	if err != nil {
		return "", err
	}

	if _, err := svc.UploadBuffer(ctx, blobContainer, blobName, data, nil); err != nil {
		return "", errno.ErrGateway.WithMessagef("failed to upload blob %s", blobName).WithCause(err)
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", accountName, blobContainer, blobName), nil
}

// GetBlob downloads a blob by its URL. The URL is the sole source of
// truth for locating the object; container and blob name are parsed from
// its path.
func (c *Client) GetBlob(ctx context.Context, container, blobURL string) ([]byte, error) {
	blobContainer, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	svc, _, err := c.blobService(ctx, container)
	if err != nil {
		return nil, err
	}

	resp, err := svc.DownloadStream(ctx, blobContainer, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, errno.ErrKnowledgeNotFound.WithCause(err)
		}
		return nil, errno.ErrGateway.WithMessagef("failed to download blob %s", blobName).WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errno.ErrGateway.WithMessagef("failed to read blob %s", blobName).WithCause(err)
	}
	return data, nil
}

// ParseBlobURL splits a blob URL into its container and blob name path
// segments.
func ParseBlobURL(blobURL string) (blobContainer, blobName string, err error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", "", errno.ErrGateway.WithMessagef("invalid blob URL %q", blobURL).WithCause(err)
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errno.ErrGateway.WithMessagef("invalid blob URL %q", blobURL).WithCause(errors.New("expected /container/blob path"))
	}
	return parts[0], parts[1], nil
}

// BlobFileName returns the final path segment of a blob URL, used as the
// download filename.
func BlobFileName(blobURL string) string {
	u, err := url.Parse(blobURL)
	if err != nil {
		return blobURL
	}
	segs := strings.Split(u.Path, "/")
	return segs[len(segs)-1]
}
