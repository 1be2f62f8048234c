package stargraph

import (
	"github.com/datar-psa/stargraph/api"
)

type Backend = api.Backend
type Message = api.Message
type Role = api.Role
type Options = api.Options
type Tool = api.Tool
type ToolHandler = api.ToolHandler
type Node = api.Node
type Result = api.Result
type Kind = api.Kind
type BinaryResult = api.BinaryResult
type NumericResult = api.NumericResult
type ModerationProvider = api.ModerationProvider
type ModerationCategory = api.ModerationCategory
type ModerationResult = api.ModerationResult

const (
	RoleSystem    = api.RoleSystem
	RoleDeveloper = api.RoleDeveloper
	RoleUser      = api.RoleUser
	RoleAssistant = api.RoleAssistant

	KindBinary  = api.KindBinary
	KindNumeric = api.KindNumeric
)

var ModerationCategories = api.ModerationCategories
