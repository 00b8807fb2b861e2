package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	fhttp "github.com/Noooste/fhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

const DEFAULT_PORT = 25964 // "el" (0x65 0x6c)
const DEFAULT_TIMEOUT = 30 // http request timeout (seconds)
const DEFAULT_MAX_SAMPLES = 3
const DEFAULT_ZIPMODE = 1 // Zip filename encoding detection mode. 0 - strict; 1 - guess the best (shift_jis > gbk)

type Config struct {
	LibraryDir     string // root dir that game dirs reside in
	Proxy          string // e.g. "socks5://127.0.0.1:1080". Lower priority than --proxy flag
	UserAgent      string
	Locale         string   // metadata page locale, e.g. "ja_JP", "en_US". Empty: site default
	Timeout        int      // http request timeout (seconds)
	MaxSamples     int      // max count of sample images downloaded per game. 0: disabled
	ExcludedGenres []string // appended to the builtin genre exclusion list
	ExcludedTags   []string // appended to the builtin tag exclusion list
	IgnorePatterns []string // gitignore style patterns of dirs that scan skips
	LaunchCommand  string   // optional wrapper command that launches a game executable, e.g. "wine"
	Port           int      // web ui port
	Token          string   // web ui token
	Vpn            *VpnConfig
	Cookies        []*fhttp.Cookie // used keys: name, value, domain, path
}

type VpnConfig struct {
	Binary    string   // tunnel program binary, e.g. "openvpn"
	Config    string   // tunnel program config file fullpath
	Username  string
	Password  string
	ProbeAddr string   // optional "host:port" that is dial-probed until open after connecting
	Args      []string // extra args passed to the tunnel program
	Comment   string
}

var (
	mu                sync.Mutex
	VerboseLevel      = 0
	DefaultConfigFile = ""
	ConfigDir         = "" // "/root/.config/erolauncher"
	ConfigFilename    = "" // "erolauncher.toml"
	ConfigFile        = "" // Fullpath, e.g. "/root/.config/erolauncher/erolauncher.toml"
	ConfigName        = "" // "erolauncher"
	ConfigType        = "" // "toml"
	Data              *Config
	Db                *gorm.DB
)

func Load() (err error) {
	ConfigDir = filepath.Dir(ConfigFile)
	ConfigFilename = filepath.Base(ConfigFile)
	configExt := filepath.Ext(ConfigFilename)
	ConfigName = ConfigFilename[:len(ConfigFilename)-len(configExt)]
	if configExt != "" {
		ConfigType = configExt[1:]
	}
	os.MkdirAll(ConfigDir, 0700)
	viper.SetDefault("port", DEFAULT_PORT)
	viper.SetDefault("timeout", DEFAULT_TIMEOUT)
	viper.SetDefault("maxsamples", DEFAULT_MAX_SAMPLES)
	viper.SetConfigName(ConfigName)
	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(ConfigDir)
	log.Infof("load config file: %s", ConfigFile)
	if err = viper.ReadInConfig(); err != nil { // file does NOT exists
		log.Infof("Fail to read config file: %v", err)
	} else if err = viper.Unmarshal(&Data); err != nil {
		log.Errorf("Fail to parse config file: %v", err)
	}
	if err != nil {
		Data = &Config{}
	}
	if Data.Port == 0 {
		Data.Port = DEFAULT_PORT
	}
	if Data.Timeout == 0 {
		Data.Timeout = DEFAULT_TIMEOUT
	}

	Db, err = schema.Init(filepath.Join(ConfigDir, "data.db"), VerboseLevel)
	if err != nil {
		return fmt.Errorf("failed to open data.db: %w", err)
	}
	return nil
}

// Return LibraryDir, erroring out when it is not configured or does not exist.
func GetLibraryDir() (string, error) {
	if Data.LibraryDir == "" {
		return "", fmt.Errorf(`librarydir is not set. Add e.g. librarydir = "/games" to %s`, ConfigFile)
	}
	if !util.FileExists(Data.LibraryDir) {
		return "", fmt.Errorf("librarydir %q does not exist", Data.LibraryDir)
	}
	return Data.LibraryDir, nil
}

func UpdateCookies(userAgent string, cookies []*fhttp.Cookie) error {
	mu.Lock()
	defer mu.Unlock()
	if userAgent != "" {
		Data.UserAgent = userAgent
	}
	for _, cookie := range cookies {
		i := slices.IndexFunc(Data.Cookies, func(c *fhttp.Cookie) bool {
			return c.Domain == cookie.Domain && c.Path == cookie.Path && c.Name == cookie.Name
		})
		if i != -1 {
			Data.Cookies[i].Value = cookie.Value
			continue
		}
		Data.Cookies = append(Data.Cookies, cookie)
	}
	viper.Set("useragent", Data.UserAgent)
	viper.Set("cookies", Data.Cookies)
	return viper.WriteConfig()
}

func init() {
	DefaultConfigFile = filepath.Join(util.Unwrap(os.UserHomeDir()), ".config", constants.NAME, constants.NAME+".toml")
}
