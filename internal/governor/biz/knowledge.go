package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/governor/store"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/pkg/component/azure"
	"github.com/agentgov/governor/pkg/errno"
)

// KnowledgeService attaches uploaded files to agents as knowledge
// sources backed by blob storage.
type KnowledgeService struct {
	store store.Factory
	gw    azure.Gateway
}

// NewKnowledgeService creates a new KnowledgeService.
func NewKnowledgeService(store store.Factory, gw azure.Gateway) *KnowledgeService {
	return &KnowledgeService{store: store, gw: gw}
}

// blobContainerName derives the per-agent blob container name.
func blobContainerName(agentID uint64) string {
	return fmt.Sprintf("agent%d-blob", agentID)
}

// Attach uploads the file into the agent's blob container and records a
// knowledge source plus its link row. Uploading the same file name again
// overwrites the blob in place but still produces a fresh source row.
func (s *KnowledgeService) Attach(ctx context.Context, agentID uint64, name, fileName string, data []byte) (*model.KnowledgeSource, error) {
	agent, err := s.store.Agents().Get(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrAgentNotFound
		}
		return nil, errno.ErrDatabase.WithCause(err)
	}

	container := blobContainerName(agentID)
	if err := s.gw.EnsureBlobContainer(ctx, agent.Name, container); err != nil {
		return nil, err
	}

	url, err := s.gw.PutBlob(ctx, agent.Name, container, fileName, data)
	if err != nil {
		return nil, err
	}
	logger.Infow("knowledge blob uploaded", "agent_id", agentID, "container", container, "blob", fileName)

	src := &model.KnowledgeSource{Name: name, Source: url}
	err = s.store.TX(ctx, func(tx store.Factory) error {
		if err := tx.Knowledge().CreateSource(ctx, src); err != nil {
			return errno.ErrDatabase.WithCause(err)
		}

		exists, err := tx.Knowledge().LinkExists(ctx, agentID, src.ID)
		if err != nil {
			return errno.ErrDatabase.WithCause(err)
		}
		if exists {
			return errno.ErrDuplicateLink
		}

		link := &model.AgentKnowledgeSource{AgentID: agentID, KnowledgeID: src.ID}
		if err := tx.Knowledge().CreateLink(ctx, link); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errno.ErrDuplicateLink
			}
			return errno.ErrDatabase.WithCause(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Fetch streams back the blob behind a knowledge source, provided the
// source is actually linked to the agent. It returns the content and the
// original file name.
func (s *KnowledgeService) Fetch(ctx context.Context, agentID, knowledgeID uint64) ([]byte, string, error) {
	agent, err := s.store.Agents().Get(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errno.ErrAgentNotFound
		}
		return nil, "", errno.ErrDatabase.WithCause(err)
	}

	src, err := s.store.Knowledge().GetForAgent(ctx, agentID, knowledgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errno.ErrKnowledgeNotFound
		}
		return nil, "", errno.ErrDatabase.WithCause(err)
	}

	data, err := s.gw.GetBlob(ctx, agent.Name, src.Source)
	if err != nil {
		return nil, "", err
	}
	return data, azure.BlobFileName(src.Source), nil
}

// List returns every knowledge source linked to the agent.
func (s *KnowledgeService) List(ctx context.Context, agentID uint64) ([]*model.KnowledgeSource, error) {
	if _, err := s.store.Agents().Get(ctx, agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrAgentNotFound
		}
		return nil, errno.ErrDatabase.WithCause(err)
	}

	list, err := s.store.Knowledge().ListByAgent(ctx, agentID)
	if err != nil {
		return nil, errno.ErrDatabase.WithCause(err)
	}
	return list, nil
}
