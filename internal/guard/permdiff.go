package guard

import "strings"

const (
	PermKickMembers    uint64 = 1 << 1
	PermBanMembers     uint64 = 1 << 2
	PermAdministrator  uint64 = 1 << 3
	PermManageChannels uint64 = 1 << 4
	PermManageGuild    uint64 = 1 << 5
	PermManageRoles    uint64 = 1 << 28
	PermManageWebhooks uint64 = 1 << 29
)

// DangerousMask covers the permissions whose grant on a role update counts
// as a tracked escalation.
const DangerousMask = PermAdministrator | PermManageGuild | PermManageChannels |
	PermManageRoles | PermBanMembers | PermKickMembers | PermManageWebhooks

// AddedPermissions returns the permission bits present in newPerms but not
// in oldPerms.
func AddedPermissions(oldPerms, newPerms uint64) uint64 {
	return (oldPerms ^ newPerms) & newPerms
}

// RemovedPermissions returns the permission bits present in oldPerms but not
// in newPerms.
func RemovedPermissions(oldPerms, newPerms uint64) uint64 {
	return (oldPerms ^ newPerms) & oldPerms
}

// DangerousAdded returns the dangerous permission bits newly granted by a
// role update. Zero means the update removed permissions or touched only
// harmless attributes and must not be tracked.
func DangerousAdded(oldPerms, newPerms uint64) uint64 {
	return AddedPermissions(oldPerms, newPerms) & DangerousMask
}

// PermissionNames renders the dangerous bits in a mask for reason strings.
func PermissionNames(mask uint64) string {
	var names []string
	if mask&PermAdministrator != 0 {
		names = append(names, "Administrator")
	}
	if mask&PermManageGuild != 0 {
		names = append(names, "ManageGuild")
	}
	if mask&PermManageChannels != 0 {
		names = append(names, "ManageChannels")
	}
	if mask&PermManageRoles != 0 {
		names = append(names, "ManageRoles")
	}
	if mask&PermBanMembers != 0 {
		names = append(names, "BanMembers")
	}
	if mask&PermKickMembers != 0 {
		names = append(names, "KickMembers")
	}
	if mask&PermManageWebhooks != 0 {
		names = append(names, "ManageWebhooks")
	}
	return strings.Join(names, ", ")
}
