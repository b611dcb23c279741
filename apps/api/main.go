package main

import (
	"log"
	"os"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/announce"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(std, err)

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf.Database)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Migrate(db))

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(database.NewUserRepository(db), mailSvc, conf)
	schoolSvc := school.NewService(database.NewSchoolRepository(db))
	academicSvc := academic.NewService(database.NewAcademicRepository(db))
	studentSvc := student.NewService(database.NewStudentRepository(db), usrSvc)
	teacherSvc := teacher.NewService(database.NewTeacherRepository(db), usrSvc)
	announceSvc := announce.NewService(database.NewAnnouncementRepository(db), mailSvc, logger)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		SchoolSvc:   schoolSvc,
		AcademicSvc: academicSvc,
		StudentSvc:  studentSvc,
		TeacherSvc:  teacherSvc,
		AnnounceSvc: announceSvc,
	})
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatalf("%+v", err)
	}
}
