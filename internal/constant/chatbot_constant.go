package constant

const (
	ChatTitle    = "Introducing MindEase, your 24/7 mental health companion"
	ChatSubtitle = "This is the list of documents you already have and that will be used to answer your questions:"

	// DocumentsCacheKey holds the distinct relative paths of the chunk store
	DocumentsCacheKey = "documents"
)
