package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// quarantineDeny is the permission mask stripped from a quarantined user in
// every channel: send, speak, connect, react, attach, embed.
const quarantineDeny = discordgo.PermissionSendMessages |
	discordgo.PermissionSendMessagesInThreads |
	discordgo.PermissionVoiceSpeak |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionAddReactions |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionEmbedLinks

// PlatformAdapter implements the engine's narrow platform interfaces
// (roles, permissions, suspension, messages, bans) over a live discordgo
// session, so the core never touches the session directly.
type PlatformAdapter struct {
	session *discordgo.Session
}

// NewPlatformAdapter wraps a discordgo session.
func NewPlatformAdapter(session *discordgo.Session) *PlatformAdapter {
	return &PlatformAdapter{session: session}
}

// MemberRoles returns the member's role IDs. Discord member role lists
// already exclude the @everyone role.
func (a *PlatformAdapter) MemberRoles(guildID, userID string) ([]string, error) {
	member, err := a.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s in guild %s: %w", userID, guildID, err)
	}
	return member.Roles, nil
}

// AddRole grants a role to a member.
func (a *PlatformAdapter) AddRole(guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// RemoveRole revokes a role from a member.
func (a *PlatformAdapter) RemoveRole(guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// GuildChannels lists the text and voice channels the bot can see.
func (a *PlatformAdapter) GuildChannels(guildID string) ([]string, error) {
	channels, err := a.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}

	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice,
			discordgo.ChannelTypeGuildForum, discordgo.ChannelTypeGuildStageVoice:
			ids = append(ids, ch.ID)
		}
	}
	return ids, nil
}

// DenyChannelPermissions applies the quarantine deny mask for the user on
// one channel.
func (a *PlatformAdapter) DenyChannelPermissions(channelID, userID string) error {
	return a.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, 0, quarantineDeny)
}

// ClearChannelPermissions removes the user's permission override from one
// channel.
func (a *PlatformAdapter) ClearChannelPermissions(channelID, userID string) error {
	return a.session.ChannelPermissionDelete(channelID, userID)
}

// TimeoutUser applies a communication timeout until the given time.
func (a *PlatformAdapter) TimeoutUser(guildID, userID string, until time.Time) error {
	return a.session.GuildMemberTimeout(guildID, userID, &until)
}

// RemoveTimeout lifts a communication timeout.
func (a *PlatformAdapter) RemoveTimeout(guildID, userID string) error {
	return a.session.GuildMemberTimeout(guildID, userID, nil)
}

// DeleteMessage removes a message from a channel.
func (a *PlatformAdapter) DeleteMessage(channelID, messageID string) error {
	return a.session.ChannelMessageDelete(channelID, messageID)
}

// BanUser bans a member with the given audit reason.
func (a *PlatformAdapter) BanUser(guildID, userID, reason string) error {
	return a.session.GuildBanCreateWithReason(guildID, userID, reason, 0)
}
