package redis

// Manager 聚合基于同一连接的各个组件
type Manager interface {
	GetClient() Client
	GetSession() SessionManager
	GetLoginLimiter() LoginLimiter
	GetUserCache() UserCache
}

type manager struct {
	client       Client
	session      SessionManager
	loginLimiter LoginLimiter
	userCache    UserCache
}

// NewManager 创建Redis管理器
func NewManager(client Client) Manager {
	return &manager{
		client:       client,
		session:      NewSessionManager(client),
		loginLimiter: NewLoginLimiter(client),
		userCache:    NewUserCache(client),
	}
}

func (m *manager) GetClient() Client             { return m.client }
func (m *manager) GetSession() SessionManager    { return m.session }
func (m *manager) GetLoginLimiter() LoginLimiter { return m.loginLimiter }
func (m *manager) GetUserCache() UserCache       { return m.userCache }
