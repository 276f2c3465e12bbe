package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	clientpkg "github.com/guildgate-org/backend/internal/client"
	eventpkg "github.com/guildgate-org/backend/internal/event"
)

type Config struct {
	// RoleName is the guild role granted to freshly verified members.
	RoleName string
}

// Worker consumes verification events and grants the verified-member role
// in the guild the member verified for.
type Worker struct {
	context       context.Context
	cancel        func()
	waitGroup     sync.WaitGroup
	logger        *zap.Logger
	router        *Router
	brokerClient  *eventpkg.KafkaClient
	discordClient *clientpkg.DiscordClient
	config        *Config
}

func NewWorker(logger *zap.Logger, brokerClient *eventpkg.KafkaClient, discordClient *clientpkg.DiscordClient, config *Config) *Worker {
	context, cancel := context.WithCancel(context.Background())
	this := &Worker{
		context:       context,
		cancel:        cancel,
		logger:        logger,
		brokerClient:  brokerClient,
		discordClient: discordClient,
		config:        config,
	}
	this.router = NewRouter(
		map[string][]EventHandler{
			eventpkg.MEMBER_VERIFIED: {
				this.MemberVerifiedHandler,
			},
		},
	)
	return this
}

func (this *Worker) Start() error {
	this.logger.Info("starting role worker")

	this.waitGroup.Add(1)
	go this.worker()
	return nil
}

func (this *Worker) Stop() error {
	this.logger.Info("stopping role worker")

	this.cancel()
	this.waitGroup.Wait()
	return nil
}

func (this *Worker) worker() {
	defer this.waitGroup.Done()

	for {
		select {
		case <-this.context.Done():
			return
		case <-time.After(1 * time.Millisecond):
		}

		event, data, err := this.brokerClient.ReadMessage(this.context)
		if err != nil {
			this.logger.Error("error receiving kafka message", zap.Error(err))
			continue
		}

		err = this.router.Handle(event, []byte(data))
		if err != nil {
			this.logger.Error("error handling kafka message", zap.Error(err))
			continue
		}
	}
}

func (this *Worker) MemberVerifiedHandler(data []byte) error {
	var message eventpkg.MemberVerifiedMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	role, err := this.ensureRole(message.GuildID)
	if err != nil {
		return err
	}

	err = this.discordClient.AddMemberRole(this.context, message.GuildID, message.UserID, role.ID)
	if err != nil {
		return err
	}

	this.logger.Info("assigned verified-member role",
		zap.String("guild_id", message.GuildID),
		zap.String("user_id", message.UserID),
		zap.String("role", role.Name),
	)
	return nil
}

func (this *Worker) ensureRole(guildID string) (clientpkg.Role, error) {
	roles, err := this.discordClient.GuildRoles(this.context, guildID)
	if err != nil {
		return clientpkg.Role{}, err
	}

	for _, role := range roles {
		if role.Name == this.config.RoleName {
			return role, nil
		}
	}

	return this.discordClient.CreateRole(this.context, guildID, this.config.RoleName)
}
