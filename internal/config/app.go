package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Stats  StatsConfig
	Game   GameConfig
	Push   PushConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	statsCfg, err := LoadStats()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	pushCfg, err := LoadPush()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Stats:  statsCfg,
		Game:   gameCfg,
		Push:   pushCfg,
	}, nil
}
