package consts

const (
	// DefaultDBName is the default database name.
	DefaultDBName = "concierge"

	// DefaultConversationTitle is the title given to conversations opened by
	// the widget. Informational only, never read by the turn logic.
	DefaultConversationTitle = "Website visitor conversation"

	// TableNameConversations is the default table/collection name for conversations.
	TableNameConversations = "conversations"

	// TableNameMessages is the default table/collection name for messages.
	TableNameMessages = "messages"

	// Column names
	ColConversationID = "conversation_id"
	ColRole           = "role"
	ColContent        = "content"
	ColTitle          = "title"
	ColCreatedAt      = "created_at"

	// Neo4j specific
	LabelConversation = "Conversation"
	LabelMessage      = "Message"
	RelHasMessage     = "HAS_MESSAGE"
)
